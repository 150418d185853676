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
)

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err = model.Validate(survey); err != nil {
			httpx.LogInvalid(w, r, "create_survey.invalid", "fields", model.FieldErrors(err))
			return
		}

		surveyId, err := app.CreateSurvey(r.Context(), survey)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": surveyId,
		})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.ListSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
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

// UpdateSurvey replaces the whole schema of a survey. The body must carry
// the version it was edited from.
func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyID(w, r)
		if !ok {
			return
		}

		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err = model.Validate(survey); err != nil {
			httpx.LogInvalid(w, r, "update_survey.invalid", "fields", model.FieldErrors(err))
			return
		}

		updated, err := app.ReplaceSchema(r.Context(), surveyId, survey)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, "update_survey", surveyId)
			return
		case errors.Is(err, database.ErrConflict):
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.update_survey.verify.conflict")
			return
		case err != nil:
			httpx.LogInternalError(w, "db.update_survey", err)
			return
		}

		render.JSON(w, r, updated)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyID(w, r)
		if !ok {
			return
		}

		err := app.DeleteSurvey(r.Context(), surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "delete_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
