package model

import "fmt"

// Builder edits a survey schema in memory. Operations keep question and
// choice order; Build validates the result.
type Builder struct {
	survey Survey
}

func NewBuilder(title string) *Builder {
	return &Builder{survey: Survey{Title: title, Active: true}}
}

// Edit seeds a builder from an existing survey. The survey is copied deeply,
// edits never reach the original.
func Edit(s Survey) *Builder {
	return &Builder{survey: clone(s)}
}

func (b *Builder) SetDescription(desc string) *Builder {
	b.survey.Description = desc
	return b
}

func (b *Builder) RequireOrganization(orgID int64) *Builder {
	b.survey.RequiresOrganization = true
	b.survey.OrganizationID = &orgID
	return b
}

// AddQuestion appends a question and returns its index.
func (b *Builder) AddQuestion(text string, t QuestionType, required bool) int {
	b.survey.Questions = append(b.survey.Questions, Question{Text: text, Type: t, Required: required})
	return len(b.survey.Questions) - 1
}

func (b *Builder) RemoveQuestion(i int) error {
	if err := b.checkQuestion(i); err != nil {
		return err
	}
	qs := b.survey.Questions
	b.survey.Questions = append(qs[:i:i], qs[i+1:]...)
	return nil
}

// MoveQuestion moves the question at index from to index to, shifting the
// questions in between.
func (b *Builder) MoveQuestion(from, to int) error {
	if err := b.checkQuestion(from); err != nil {
		return err
	}
	if err := b.checkQuestion(to); err != nil {
		return err
	}
	qs := b.survey.Questions
	q := qs[from]
	if from < to {
		copy(qs[from:to], qs[from+1:to+1])
	} else {
		copy(qs[to+1:from+1], qs[to:from])
	}
	qs[to] = q
	return nil
}

// SetType changes a question's type. Switching to Text drops its choices.
func (b *Builder) SetType(i int, t QuestionType) error {
	if err := b.checkQuestion(i); err != nil {
		return err
	}
	q := &b.survey.Questions[i]
	q.Type = t
	if !t.HasChoices() {
		q.Choices = nil
	}
	return nil
}

func (b *Builder) SetRequired(i int, required bool) error {
	if err := b.checkQuestion(i); err != nil {
		return err
	}
	b.survey.Questions[i].Required = required
	return nil
}

// AddChoice appends a choice to question i and returns its index.
func (b *Builder) AddChoice(i int, text string) (int, error) {
	if err := b.checkQuestion(i); err != nil {
		return 0, err
	}
	q := &b.survey.Questions[i]
	if !q.Type.HasChoices() {
		return 0, fmt.Errorf("question %d of type %s takes no choices", i, q.Type)
	}
	q.Choices = append(q.Choices, Choice{Text: text})
	return len(q.Choices) - 1, nil
}

func (b *Builder) RemoveChoice(i, j int) error {
	if err := b.checkQuestion(i); err != nil {
		return err
	}
	cs := b.survey.Questions[i].Choices
	if j < 0 || j >= len(cs) {
		return fmt.Errorf("choice %d out of range in question %d", j, i)
	}
	b.survey.Questions[i].Choices = append(cs[:j:j], cs[j+1:]...)
	return nil
}

// Build returns a validated copy of the edited survey.
func (b *Builder) Build() (Survey, error) {
	s := clone(b.survey)
	if err := Validate(s); err != nil {
		return Survey{}, err
	}
	return s, nil
}

func (b *Builder) checkQuestion(i int) error {
	if i < 0 || i >= len(b.survey.Questions) {
		return fmt.Errorf("question %d out of range", i)
	}
	return nil
}

func clone(s Survey) Survey {
	c := s
	if s.OrganizationID != nil {
		id := *s.OrganizationID
		c.OrganizationID = &id
	}
	c.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		c.Questions[i] = q
		if q.Choices != nil {
			c.Questions[i].Choices = append([]Choice{}, q.Choices...)
		}
	}
	return c
}
