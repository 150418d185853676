package report

import (
	"github.com/mbolis/survey-tally/model"
)

type ChoiceCount struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Count int    `json:"count"`
	// Dangling marks a choice id that answers reference but the current
	// schema no longer defines.
	Dangling bool `json:"dangling,omitempty"`
}

type QuestionStats struct {
	QuestionID int64              `json:"question"`
	Type       model.QuestionType `json:"type"`
	Total      int                `json:"total"`
	Choices    []ChoiceCount      `json:"choices,omitempty"`
}

// DanglingChoice is one answer selecting a choice id absent from the schema,
// typically left behind by an edit that removed the choice.
type DanglingChoice struct {
	ResponseID int64 `json:"response"`
	QuestionID int64 `json:"question"`
	ChoiceID   int64 `json:"choice"`
}

type Summary struct {
	Questions map[int64]QuestionStats `json:"questions"`
	Dangling  []DanglingChoice        `json:"dangling,omitempty"`
}

type tally struct {
	stats    QuestionStats
	choiceAt map[int64]int
}

// Aggregate computes one QuestionStats per question of the survey in a single
// pass over the responses. Text questions count responses with a non-empty
// answer; choice questions count selections per choice, in schema order.
// Selections of unknown choice ids are counted too and reported in Dangling.
// A response is read the same way the table reads it: its first answer to a
// question counts, later ones are ignored.
func Aggregate(survey model.Survey, responses []model.Response) Summary {
	l := newAnswerLookup(survey, responses)

	tallies := make([]tally, len(survey.Questions))
	for qi, q := range survey.Questions {
		t := tally{stats: QuestionStats{QuestionID: q.ID, Type: q.Type}}
		switch q.Type {
		case model.SingleChoice, model.MultipleChoice:
			t.stats.Choices = make([]ChoiceCount, len(q.Choices))
			t.choiceAt = make(map[int64]int, len(q.Choices))
			for i, c := range q.Choices {
				t.stats.Choices[i] = ChoiceCount{ID: c.ID, Text: c.Text}
				t.choiceAt[c.ID] = i
			}
		case model.Text:
		}
		tallies[qi] = t
	}

	var dangling []DanglingChoice
	for ri, r := range responses {
		for qi := range survey.Questions {
			a := l.cells[ri][qi]
			if a == nil {
				continue
			}
			t := &tallies[qi]

			switch t.stats.Type {
			case model.Text:
				if a.TextAnswer != nil && *a.TextAnswer != "" {
					t.stats.Total++
				}
				// left over from before the question became a text question
				for _, id := range a.SelectedChoices {
					dangling = append(dangling, DanglingChoice{ResponseID: r.ID, QuestionID: a.QuestionID, ChoiceID: id})
				}
			case model.SingleChoice, model.MultipleChoice:
				for _, id := range a.SelectedChoices {
					i, ok := t.choiceAt[id]
					if !ok {
						i = len(t.stats.Choices)
						t.stats.Choices = append(t.stats.Choices, ChoiceCount{ID: id, Dangling: true})
						t.choiceAt[id] = i
					}
					if t.stats.Choices[i].Dangling {
						dangling = append(dangling, DanglingChoice{ResponseID: r.ID, QuestionID: a.QuestionID, ChoiceID: id})
					}
					t.stats.Choices[i].Count++
					t.stats.Total++
				}
			}
		}
	}

	summary := Summary{
		Questions: make(map[int64]QuestionStats, len(tallies)),
		Dangling:  dangling,
	}
	for _, t := range tallies {
		summary.Questions[t.stats.QuestionID] = t.stats
	}
	return summary
}
