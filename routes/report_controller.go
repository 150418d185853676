package routes

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-tally/app"
	"github.com/mbolis/survey-tally/database"
	"github.com/mbolis/survey-tally/httpx"
	"github.com/mbolis/survey-tally/log"
	"github.com/mbolis/survey-tally/model"
	"github.com/mbolis/survey-tally/report"
)

// loadResponses fetches a survey schema and a snapshot of its responses.
// ok is false if a response has already been written.
func loadResponses(app app.App, w http.ResponseWriter, r *http.Request) (survey model.Survey, responses []model.Response, ok bool) {
	surveyId, ok := surveyID(w, r)
	if !ok {
		return
	}

	survey, err := app.GetSchema(r.Context(), surveyId)
	if errors.Is(err, database.ErrNotFound) {
		httpx.LogNotFound(w, "get_responses", surveyId)
		return survey, nil, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_survey", err)
		return survey, nil, false
	}

	responses, err = app.ListResponses(r.Context(), surveyId)
	if errors.Is(err, database.ErrNotFound) {
		httpx.LogNotFound(w, "get_responses", surveyId)
		return survey, nil, false
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_responses", err)
		return survey, nil, false
	}
	return survey, responses, true
}

func GetSurveyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, responses, ok := loadResponses(app, w, r)
		if !ok {
			return
		}

		render.JSON(w, r, responses)
	}
}

func GetSurveyStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, responses, ok := loadResponses(app, w, r)
		if !ok {
			return
		}

		summary := report.Aggregate(survey, responses)
		for _, d := range summary.Dangling {
			log.WithFields(log.Fields{
				"survey":   survey.ID,
				"response": d.ResponseID,
				"question": d.QuestionID,
				"choice":   d.ChoiceID,
			}).Warn("report.dangling_choice")
		}

		render.JSON(w, r, summary)
	}
}

func GetSurveyTable(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, responses, ok := loadResponses(app, w, r)
		if !ok {
			return
		}

		render.JSON(w, r, report.BuildTable(survey, responses))
	}
}

func ExportSurveyCSV(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, responses, ok := loadResponses(app, w, r)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": report.ExportFilename(survey.Title),
		}))
		if err := report.WriteCSV(w, survey, responses); err != nil {
			log.Debugf("export.write: %s", err)
		}
	}
}
