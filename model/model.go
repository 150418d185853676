package model

import "time"

type QuestionType string

const (
	Text           QuestionType = "text"
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case Text, SingleChoice, MultipleChoice:
		return true
	}
	return false
}

// HasChoices reports whether answers to a question of type t are choice ids.
func (t QuestionType) HasChoices() bool {
	switch t {
	case SingleChoice, MultipleChoice:
		return true
	case Text:
		return false
	}
	return false
}

type Survey struct {
	ID                   int64      `json:"id,omitempty" yaml:"id,omitempty"`
	Version              int        `json:"version,omitempty" yaml:"version,omitempty"`
	Title                string     `json:"title" yaml:"title"`
	Description          string     `json:"description" yaml:"description"`
	Active               bool       `json:"is_active" yaml:"is_active"`
	RequiresOrganization bool       `json:"requires_organization" yaml:"requires_organization"`
	OrganizationID       *int64     `json:"organization_id,omitempty" yaml:"organization_id,omitempty"`
	Questions            []Question `json:"questions" yaml:"questions"`
}

type Question struct {
	ID       int64        `json:"id,omitempty" yaml:"id,omitempty"`
	Text     string       `json:"text" yaml:"text"`
	Type     QuestionType `json:"question_type" yaml:"question_type"`
	Required bool         `json:"required" yaml:"required"`
	Choices  []Choice     `json:"choices" yaml:"choices,omitempty"`
}

type Choice struct {
	ID   int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Text string `json:"text" yaml:"text"`
}

type Response struct {
	ID          int64     `json:"id"`
	SurveyID    int64     `json:"survey"`
	Respondent  *string   `json:"respondent"`
	SubmittedAt time.Time `json:"submitted_at"`
	Answers     []Answer  `json:"answers"`
}

// Answer holds exactly one of TextAnswer (text questions) or
// SelectedChoices (choice questions).
type Answer struct {
	QuestionID      int64   `json:"question"`
	TextAnswer      *string `json:"text_answer,omitempty"`
	SelectedChoices []int64 `json:"selected_choices,omitempty"`
}
