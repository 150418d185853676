package submission

import (
	"context"

	"github.com/mbolis/survey-tally/model"
)

// ResponseCreator persists one response with all its answers atomically.
type ResponseCreator interface {
	CreateResponse(ctx context.Context, surveyID int64, respondent *string, answers []model.Answer) (model.Response, error)
}

// TransportError wraps a failure of the persistence layer. Nothing was
// stored, so the same submission can be retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "submission not stored: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Submit validates proposed answers against survey and stores them as a new
// response. It returns model.ErrSurveyClosed or model.ErrNoQuestions for
// surveys that cannot be answered, a *ValidationError when answers are
// rejected, or a *TransportError when the store fails.
func Submit(ctx context.Context, store ResponseCreator, survey model.Survey, respondent *string, proposed map[int64]Proposed) (model.Response, error) {
	if err := survey.Submittable(); err != nil {
		return model.Response{}, err
	}

	answers, err := ValidateAndBuild(survey, proposed)
	if err != nil {
		return model.Response{}, err
	}

	if err := ctx.Err(); err != nil {
		return model.Response{}, err
	}

	resp, err := store.CreateResponse(ctx, survey.ID, respondent, answers)
	if err != nil {
		return model.Response{}, &TransportError{Err: err}
	}
	return resp, nil
}
