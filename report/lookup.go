// Package report turns a survey and its responses into per-question
// statistics and flat exports.
package report

import (
	"strings"

	"github.com/mbolis/survey-tally/model"
)

// ChoiceSeparator joins the texts of several selected choices in one cell.
const ChoiceSeparator = "; "

// answerLookup indexes answers by (response, question) position, so every
// view reads cells in O(1) after a single pass over the answers.
type answerLookup struct {
	survey  model.Survey
	cells   [][]*model.Answer
	choices []map[int64]string
}

func newAnswerLookup(survey model.Survey, responses []model.Response) answerLookup {
	pos := questionPositions(survey)

	l := answerLookup{
		survey:  survey,
		cells:   make([][]*model.Answer, len(responses)),
		choices: make([]map[int64]string, len(survey.Questions)),
	}
	for qi, q := range survey.Questions {
		if len(q.Choices) == 0 {
			continue
		}
		texts := make(map[int64]string, len(q.Choices))
		for _, c := range q.Choices {
			texts[c.ID] = c.Text
		}
		l.choices[qi] = texts
	}

	for ri := range responses {
		row := make([]*model.Answer, len(survey.Questions))
		answers := responses[ri].Answers
		for ai := range answers {
			qi, ok := pos[answers[ai].QuestionID]
			if !ok || row[qi] != nil {
				continue
			}
			row[qi] = &answers[ai]
		}
		l.cells[ri] = row
	}
	return l
}

// cell renders the answer of response ri to question qi. ok is false when the
// response did not answer the question.
func (l answerLookup) cell(ri, qi int) (text string, ok bool) {
	a := l.cells[ri][qi]
	if a == nil {
		return "", false
	}

	switch l.survey.Questions[qi].Type {
	case model.Text:
		// an answer stored while the question offered choices has no text
		if a.TextAnswer == nil {
			return "", false
		}
		return *a.TextAnswer, true
	case model.SingleChoice, model.MultipleChoice:
		if len(a.SelectedChoices) == 0 {
			return "", false
		}
		texts := make([]string, 0, len(a.SelectedChoices))
		for _, id := range a.SelectedChoices {
			// choices removed by a later edit have no text to show
			if t, found := l.choices[qi][id]; found {
				texts = append(texts, t)
			}
		}
		return strings.Join(texts, ChoiceSeparator), true
	}
	return "", true
}

func questionPositions(survey model.Survey) map[int64]int {
	pos := make(map[int64]int, len(survey.Questions))
	for i, q := range survey.Questions {
		pos[q.ID] = i
	}
	return pos
}
