package submission

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mbolis/survey-tally/model"
)

func feedbackSurvey() model.Survey {
	return model.Survey{
		ID:     7,
		Title:  "Feedback",
		Active: true,
		Questions: []model.Question{
			{ID: 1, Text: "Name", Type: model.Text, Required: true},
			{ID: 2, Text: "Topics", Type: model.MultipleChoice, Choices: []model.Choice{{ID: 10, Text: "T1"}, {ID: 11, Text: "T2"}}},
			{ID: 3, Text: "Rating", Type: model.SingleChoice, Required: true, Choices: []model.Choice{{ID: 20, Text: "A"}, {ID: 21, Text: "B"}}},
			{ID: 4, Text: "Comments", Type: model.Text},
		},
	}
}

func validationErrors(t *testing.T, err error) map[int64]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr.Questions
}

func TestValidateAndBuild(t *testing.T) {
	tests := []struct {
		name     string
		survey   model.Survey
		proposed map[int64]Proposed
		want     map[int64]string
	}{
		{
			name:     "required text missing",
			survey:   model.Survey{Questions: []model.Question{{ID: 1, Text: "Name", Type: model.Text, Required: true}}},
			proposed: map[int64]Proposed{},
			want:     map[int64]string{1: MsgRequired},
		},
		{
			name: "optional multiple choice present but empty",
			survey: model.Survey{Questions: []model.Question{
				{ID: 2, Text: "Topics", Type: model.MultipleChoice, Choices: []model.Choice{{ID: 10, Text: "T1"}, {ID: 11, Text: "T2"}}},
			}},
			proposed: map[int64]Proposed{2: ChoicesAnswer()},
			want:     map[int64]string{2: MsgInvalid},
		},
		{
			name:     "whitespace text",
			survey:   feedbackSurvey(),
			proposed: map[int64]Proposed{1: TextAnswer("   "), 3: ChoiceAnswer(20)},
			want:     map[int64]string{1: MsgInvalid},
		},
		{
			name:     "presence and content errors together",
			survey:   feedbackSurvey(),
			proposed: map[int64]Proposed{2: ChoicesAnswer(), 4: TextAnswer("")},
			want:     map[int64]string{1: MsgRequired, 2: MsgInvalid, 3: MsgRequired, 4: MsgInvalid},
		},
		{
			name:     "single choice without id",
			survey:   feedbackSurvey(),
			proposed: map[int64]Proposed{1: TextAnswer("Ann"), 3: {}},
			want:     map[int64]string{3: MsgInvalid},
		},
		{
			name:     "choice from another question",
			survey:   feedbackSurvey(),
			proposed: map[int64]Proposed{1: TextAnswer("Ann"), 3: ChoiceAnswer(10)},
			want:     map[int64]string{3: MsgInvalid},
		},
		{
			name:     "text question given choices",
			survey:   feedbackSurvey(),
			proposed: map[int64]Proposed{1: ChoicesAnswer(10), 3: ChoiceAnswer(20)},
			want:     map[int64]string{1: MsgInvalid},
		},
		{
			name:     "unknown question",
			survey:   feedbackSurvey(),
			proposed: map[int64]Proposed{1: TextAnswer("Ann"), 3: ChoiceAnswer(20), 99: TextAnswer("x")},
			want:     map[int64]string{99: MsgUnknownQuestion},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, err := ValidateAndBuild(tt.survey, tt.proposed)
			if answers != nil {
				t.Fatalf("expected no answers, got %v", answers)
			}
			got := validationErrors(t, err)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for id, msg := range tt.want {
				if got[id] != msg {
					t.Fatalf("question %d: expected %q, got %q", id, msg, got[id])
				}
			}
		})
	}
}

func TestValidateAndBuildOptionalAbsent(t *testing.T) {
	answers, err := ValidateAndBuild(feedbackSurvey(), map[int64]Proposed{
		1: TextAnswer("Ann"),
		3: ChoiceAnswer(21),
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected one answer per key, got %v", answers)
	}
}

func TestValidateAndBuildAnswers(t *testing.T) {
	answers, err := ValidateAndBuild(feedbackSurvey(), map[int64]Proposed{
		4: TextAnswer("nice"),
		2: ChoicesAnswer(11, 10, 11),
		3: {Choices: []int64{21, 20}},
		1: TextAnswer("Ann"),
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(answers) != 4 {
		t.Fatalf("expected 4 answers, got %d", len(answers))
	}
	for i, id := range []int64{1, 2, 3, 4} {
		if answers[i].QuestionID != id {
			t.Fatalf("answer %d: expected question %d, got %d", i, id, answers[i].QuestionID)
		}
	}
	if *answers[0].TextAnswer != "Ann" || answers[0].SelectedChoices != nil {
		t.Fatalf("unexpected text answer %+v", answers[0])
	}
	if got := answers[1].SelectedChoices; len(got) != 2 || got[0] != 11 || got[1] != 10 {
		t.Fatalf("expected de-duplicated [11 10], got %v", got)
	}
	if got := answers[2].SelectedChoices; len(got) != 1 || got[0] != 21 {
		t.Fatalf("expected single choice normalized to [21], got %v", got)
	}
	if answers[2].TextAnswer != nil {
		t.Fatalf("choice answer carries text")
	}
}

func TestProposedJSON(t *testing.T) {
	var got map[int64]Proposed
	body := `{"1": "Ann", "2": {"choices": [10, 11]}, "3": {"choice": 20}, "4": {"choices": []}}`
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got[1].Text == nil || *got[1].Text != "Ann" {
		t.Fatalf("expected text answer, got %+v", got[1])
	}
	if len(got[2].Choices) != 2 {
		t.Fatalf("expected two choices, got %+v", got[2])
	}
	if got[3].Choice == nil || *got[3].Choice != 20 {
		t.Fatalf("expected single choice, got %+v", got[3])
	}
	if _, ok := got[4]; !ok || len(got[4].Choices) != 0 {
		t.Fatalf("expected present empty choices, got %+v", got[4])
	}

	out, err := json.Marshal(TextAnswer("hi"))
	if err != nil || string(out) != `"hi"` {
		t.Fatalf("expected bare string, got %s (%v)", out, err)
	}
}
