package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/mbolis/survey-tally/model"
)

// TestFeatures runs the scenarios under testdata/features against a live server.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "responses",
		ScenarioInitializer: scenarioInitializer(t),
		Options: &godog.Options{
			Format:   "progress",
			Paths:    []string{"testdata/features"},
			Strict:   true,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

func scenarioInitializer(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		state := &featureState{}
		ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			return ctx, state.reset(t.TempDir())
		})
		ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
			state.close()
			return ctx, nil
		})

		ctx.Step(`^a survey "([^"]+)" with questions:$`, state.givenSurvey)
		ctx.Step(`^I submit an empty response$`, state.submitEmpty)
		ctx.Step(`^I submit a response with no choices for "([^"]+)"$`, state.submitNoChoices)
		ctx.Step(`^I submit a response choosing "([^"]+)" for "([^"]+)"$`, state.submitChoice)
		ctx.Step(`^I submit a response answering "([^"]+)" with:$`, state.submitText)
		ctx.Step(`^the response is rejected with "([^"]+)" for "([^"]+)"$`, state.rejectedWith)
		ctx.Step(`^the stats for "([^"]+)" are:$`, state.statsAre)
		ctx.Step(`^the total for "([^"]+)" is (\d+)$`, state.totalIs)
		ctx.Step(`^the exported CSV contains the cell:$`, state.csvContains)
	}
}

type featureState struct {
	server     *httptest.Server
	stop       func()
	survey     model.Survey
	lastStatus int
	lastBody   []byte
}

func (s *featureState) reset(dir string) error {
	s.close()
	srv, stop, err := newTestServer(dir)
	if err != nil {
		return err
	}
	s.server, s.stop = srv, stop
	s.survey = model.Survey{}
	s.lastStatus, s.lastBody = 0, nil
	return nil
}

func (s *featureState) close() {
	if s.stop != nil {
		s.stop()
		s.stop, s.server = nil, nil
	}
}

func (s *featureState) expect(status int, method, path string, body, out any) error {
	got, data, _, err := call(s.server, method, path, body)
	if err != nil {
		return err
	}
	if got != status {
		return fmt.Errorf("%s %s: expected status %d, got %d: %s", method, path, status, got, data)
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

func (s *featureState) givenSurvey(title string, table *godog.Table) error {
	survey := model.Survey{Title: title, Active: true}
	for _, row := range table.Rows[1:] {
		q := model.Question{
			Text:     row.Cells[0].Value,
			Type:     model.QuestionType(row.Cells[1].Value),
			Required: row.Cells[2].Value == "yes",
		}
		for _, text := range strings.Split(row.Cells[3].Value, ",") {
			if text = strings.TrimSpace(text); text != "" {
				q.Choices = append(q.Choices, model.Choice{Text: text})
			}
		}
		survey.Questions = append(survey.Questions, q)
	}

	var created struct{ ID int64 }
	if err := s.expect(http.StatusCreated, http.MethodPost, "/api/admin/surveys", survey, &created); err != nil {
		return err
	}
	return s.expect(http.StatusOK, http.MethodGet, fmt.Sprintf("/api/surveys/%d", created.ID), nil, &s.survey)
}

func (s *featureState) question(text string) (model.Question, error) {
	for _, q := range s.survey.Questions {
		if q.Text == text {
			return q, nil
		}
	}
	return model.Question{}, fmt.Errorf("no question %q", text)
}

func (s *featureState) submit(answers map[string]any) error {
	status, data, _, err := call(s.server, http.MethodPost, fmt.Sprintf("/api/surveys/%d/responses", s.survey.ID), map[string]any{
		"answers": answers,
	})
	s.lastStatus, s.lastBody = status, data
	return err
}

func (s *featureState) submitEmpty() error {
	return s.submit(map[string]any{})
}

func (s *featureState) submitNoChoices(questionText string) error {
	q, err := s.question(questionText)
	if err != nil {
		return err
	}
	return s.submit(map[string]any{
		strconv.FormatInt(q.ID, 10): map[string]any{"choices": []int64{}},
	})
}

func (s *featureState) submitChoice(choiceText, questionText string) error {
	q, err := s.question(questionText)
	if err != nil {
		return err
	}
	for _, c := range q.Choices {
		if c.Text == choiceText {
			return s.submit(map[string]any{
				strconv.FormatInt(q.ID, 10): map[string]any{"choice": c.ID},
			})
		}
	}
	return fmt.Errorf("no choice %q in %q", choiceText, questionText)
}

func (s *featureState) submitText(questionText string, doc *godog.DocString) error {
	q, err := s.question(questionText)
	if err != nil {
		return err
	}
	if err = s.submit(map[string]any{strconv.FormatInt(q.ID, 10): doc.Content}); err != nil {
		return err
	}
	if s.lastStatus != http.StatusCreated {
		return fmt.Errorf("expected response to be stored, got %d: %s", s.lastStatus, s.lastBody)
	}
	return nil
}

func (s *featureState) rejectedWith(message, questionText string) error {
	q, err := s.question(questionText)
	if err != nil {
		return err
	}
	if s.lastStatus != http.StatusBadRequest {
		return fmt.Errorf("expected status 400, got %d: %s", s.lastStatus, s.lastBody)
	}
	var body struct{ Questions map[string]string }
	if err = json.Unmarshal(s.lastBody, &body); err != nil {
		return err
	}
	if got := body.Questions[strconv.FormatInt(q.ID, 10)]; got != message {
		return fmt.Errorf("expected %q for %q, got %q", message, questionText, got)
	}
	return nil
}

type statsBody struct {
	Questions map[string]struct {
		Total   int `json:"total"`
		Choices []struct {
			Text  string `json:"text"`
			Count int    `json:"count"`
		} `json:"choices"`
	} `json:"questions"`
}

func (s *featureState) stats() (statsBody, error) {
	var body statsBody
	err := s.expect(http.StatusOK, http.MethodGet, fmt.Sprintf("/api/admin/surveys/%d/stats", s.survey.ID), nil, &body)
	return body, err
}

func (s *featureState) statsAre(questionText string, table *godog.Table) error {
	q, err := s.question(questionText)
	if err != nil {
		return err
	}
	body, err := s.stats()
	if err != nil {
		return err
	}
	choices := body.Questions[strconv.FormatInt(q.ID, 10)].Choices
	want := table.Rows[1:]
	if len(choices) != len(want) {
		return fmt.Errorf("expected %d choices, got %d", len(want), len(choices))
	}
	for i, row := range want {
		count, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		if choices[i].Text != row.Cells[0].Value || choices[i].Count != count {
			return fmt.Errorf("choice %d: expected %s=%d, got %s=%d", i, row.Cells[0].Value, count, choices[i].Text, choices[i].Count)
		}
	}
	return nil
}

func (s *featureState) totalIs(questionText string, total int) error {
	q, err := s.question(questionText)
	if err != nil {
		return err
	}
	body, err := s.stats()
	if err != nil {
		return err
	}
	if got := body.Questions[strconv.FormatInt(q.ID, 10)].Total; got != total {
		return fmt.Errorf("expected total %d, got %d", total, got)
	}
	return nil
}

func (s *featureState) csvContains(doc *godog.DocString) error {
	status, data, _, err := call(s.server, http.MethodGet, fmt.Sprintf("/api/admin/surveys/%d/export.csv", s.survey.ID), nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", status)
	}
	if !strings.Contains(string(data), doc.Content) {
		return fmt.Errorf("cell %s not found in %q", doc.Content, data)
	}
	return nil
}
