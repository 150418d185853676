package model

import "errors"

var (
	ErrSurveyClosed = errors.New("survey is not accepting responses")
	ErrNoQuestions  = errors.New("survey has no questions")
)

// Question returns the question with the given id, or nil.
func (s *Survey) Question(id int64) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

func (s *Survey) QuestionsOfType(t QuestionType) []Question {
	var qs []Question
	for _, q := range s.Questions {
		if q.Type == t {
			qs = append(qs, q)
		}
	}
	return qs
}

func (s *Survey) RequiredQuestions() []Question {
	var qs []Question
	for _, q := range s.Questions {
		if q.Required {
			qs = append(qs, q)
		}
	}
	return qs
}

// Submittable returns nil if respondents may answer the survey.
func (s *Survey) Submittable() error {
	if !s.Active {
		return ErrSurveyClosed
	}
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	return nil
}

func IsChoiceQuestion(q Question) bool {
	return q.Type.HasChoices()
}

// Choice returns the choice with the given id, or nil.
func (q *Question) Choice(id int64) *Choice {
	for i := range q.Choices {
		if q.Choices[i].ID == id {
			return &q.Choices[i]
		}
	}
	return nil
}
