package submission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mbolis/survey-tally/model"
)

const (
	MsgRequired        = "This field is required"
	MsgInvalid         = "Please provide a valid answer"
	MsgUnknownQuestion = "Unknown question"
)

// ValidationError reports, per question id, why a submission was rejected.
type ValidationError struct {
	Questions map[int64]string
}

func (e *ValidationError) Error() string {
	ids := make([]int64, 0, len(e.Questions))
	for id := range e.Questions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("question %d: %s", id, e.Questions[id])
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// ValidateAndBuild checks proposed answers against the survey and, when all
// of them pass, returns one Answer per proposed entry in survey order.
// All errors are collected before returning a *ValidationError.
func ValidateAndBuild(survey model.Survey, proposed map[int64]Proposed) ([]model.Answer, error) {
	errs := map[int64]string{}

	for _, q := range survey.Questions {
		if _, ok := proposed[q.ID]; q.Required && !ok {
			errs[q.ID] = MsgRequired
		}
	}

	answers := make([]model.Answer, 0, len(proposed))
	for _, q := range survey.Questions {
		p, ok := proposed[q.ID]
		if !ok {
			continue
		}
		a, valid := buildAnswer(q, p)
		if !valid {
			errs[q.ID] = MsgInvalid
			continue
		}
		answers = append(answers, a)
	}

	for id := range proposed {
		if survey.Question(id) == nil {
			errs[id] = MsgUnknownQuestion
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Questions: errs}
	}
	return answers, nil
}

func buildAnswer(q model.Question, p Proposed) (model.Answer, bool) {
	a := model.Answer{QuestionID: q.ID}

	switch q.Type {
	case model.Text:
		if p.Text == nil || strings.TrimSpace(*p.Text) == "" {
			return a, false
		}
		text := *p.Text
		a.TextAnswer = &text

	case model.SingleChoice:
		ids := p.selected()
		if len(ids) == 0 {
			return a, false
		}
		// a malformed map may carry several ids; only the first counts
		a.SelectedChoices = ids[:1]

	case model.MultipleChoice:
		ids := p.selected()
		if len(ids) == 0 {
			return a, false
		}
		a.SelectedChoices = ids

	default:
		return a, false
	}

	for _, id := range a.SelectedChoices {
		if q.Choice(id) == nil {
			return a, false
		}
	}
	return a, true
}
