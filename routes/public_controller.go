package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-tally/app"
	"github.com/mbolis/survey-tally/database"
	"github.com/mbolis/survey-tally/httpx"
	"github.com/mbolis/survey-tally/log"
	"github.com/mbolis/survey-tally/model"
	"github.com/mbolis/survey-tally/submission"
)

func PublicGetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyID(w, r)
		if !ok {
			return
		}

		survey, err := app.GetSchema(r.Context(), surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

type submissionRequest struct {
	Respondent *string                       `json:"respondent"`
	Answers    map[int64]submission.Proposed `json:"answers"`
}

func PublicSubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyID(w, r)
		if !ok {
			return
		}

		req := submissionRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey, err := app.GetSchema(r.Context(), surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		resp, err := submission.Submit(r.Context(), app.Store, survey, req.Respondent, req.Answers)

		var invalid *submission.ValidationError
		var transport *submission.TransportError
		switch {
		case errors.As(err, &invalid):
			httpx.LogInvalid(w, r, "submission.invalid", "questions", invalid.Questions)
			return
		case errors.Is(err, model.ErrSurveyClosed), errors.Is(err, model.ErrNoQuestions):
			httpx.LogDetail(w, r, http.StatusConflict, log.DebugLevel, "submission.closed", "%s", err)
			return
		case errors.As(err, &transport):
			log.Errorf("db.insert_response: %s", transport.Err)
			httpx.LogDetail(w, r, http.StatusServiceUnavailable, log.DebugLevel, "submission.not_stored", "Failed to submit response")
			return
		case err != nil:
			// request context ended before the response was stored
			log.Debugf("submission.abandoned: %s", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": resp.ID,
		})
	}
}
