package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/survey-tally/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the survey changed since the version being edited.
	ErrConflict = errors.New("version conflict")
)

// Store persists surveys and their responses.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) CreateSurvey(ctx context.Context, survey model.Survey) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	var surveyID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO survey (title, description, active, requires_organization, organization_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		survey.Title,
		survey.Description,
		survey.Active,
		survey.RequiresOrganization,
		survey.OrganizationID,
	).Scan(&surveyID)
	if err != nil {
		return 0, errors.Wrap(err, "db.insert_survey")
	}

	err = insertQuestions(ctx, tx, surveyID, survey.Questions, nil, nil)
	if err != nil {
		return 0, errors.Wrap(err, "db.insert_survey")
	}

	err = tx.Commit()
	if err != nil {
		return 0, errors.Wrap(err, "db.insert_survey.commit")
	}
	return surveyID, nil
}

// ListSurveys returns every survey without its questions.
func (s *Store) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, title, description, active, requires_organization, organization_id
		FROM survey
		ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_surveys")
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, errors.Wrap(err, "db.get_surveys.scan")
		}
		surveys = append(surveys, survey)
	}
	return surveys, errors.Wrap(rows.Err(), "db.get_surveys")
}

// GetSchema returns the survey with its questions and choices in order.
func (s *Store) GetSchema(ctx context.Context, surveyID int64) (model.Survey, error) {
	return getSchema(ctx, s.db, surveyID)
}

// ReplaceSchema overwrites the survey and its whole question list. The edit
// applies only if survey.Version matches the stored version. Question and
// choice ids the survey already owned are kept; any other id is reassigned.
func (s *Store) ReplaceSchema(ctx context.Context, surveyID int64, survey model.Survey) (model.Survey, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE survey
		SET
			title = ?,
			description = ?,
			active = ?,
			requires_organization = ?,
			organization_id = ?,
			version = version+1
		WHERE id = ?
			AND version = ?`,
		survey.Title,
		survey.Description,
		survey.Active,
		survey.RequiresOrganization,
		survey.OrganizationID,
		surveyID,
		survey.Version,
	)
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.update_survey")
	}
	// optimistic lock
	n, err := res.RowsAffected()
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.update_survey.verify")
	}
	if n < 1 {
		if err := surveyExists(ctx, tx, surveyID); err != nil {
			return model.Survey{}, err
		}
		return model.Survey{}, ErrConflict
	}

	keepQuestions, keepChoices, err := ownedIDs(ctx, tx, surveyID)
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.update_survey.owned_ids")
	}

	// choices go with their questions
	_, err = tx.ExecContext(ctx, `
		DELETE FROM question
		WHERE survey_id = ?`,
		surveyID,
	)
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.update_survey.delete_questions")
	}

	err = insertQuestions(ctx, tx, surveyID, survey.Questions, keepQuestions, keepChoices)
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.update_survey")
	}

	updated, err := getSchema(ctx, tx, surveyID)
	if err != nil {
		return model.Survey{}, err
	}

	err = tx.Commit()
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.update_survey.commit")
	}
	return updated, nil
}

// DeleteSurvey removes a survey together with its questions and responses.
func (s *Store) DeleteSurvey(ctx context.Context, surveyID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM survey WHERE id = ?`,
		surveyID,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_survey")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "db.delete_survey.verify")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

// ListResponses returns every response to a survey, oldest first, with its
// answers in submission order.
func (s *Store) ListResponses(ctx context.Context, surveyID int64) ([]model.Response, error) {
	if err := surveyExists(ctx, s.db, surveyID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id, r.respondent, r.submitted_at,
			a.id, a.question_id, a.text_answer,
			ac.choice_id
		FROM response r
		LEFT OUTER JOIN answer a ON (a.response_id = r.id)
		LEFT OUTER JOIN answer_choice ac ON (ac.answer_id = a.id)
		WHERE r.survey_id = ?
		ORDER BY r.id, a.position, ac.position`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	var lastAnswerID int64
	for rows.Next() {
		var (
			responseID  int64
			respondent  sql.NullString
			submittedAt time.Time
			answerID    sql.NullInt64
			questionID  sql.NullInt64
			textAnswer  sql.NullString
			choiceID    sql.NullInt64
		)
		err = rows.Scan(
			&responseID, &respondent, &submittedAt,
			&answerID, &questionID, &textAnswer,
			&choiceID,
		)
		if err != nil {
			return nil, errors.Wrap(err, "db.get_responses.scan")
		}

		last := len(responses) - 1
		if last < 0 || responses[last].ID != responseID {
			responses = append(responses, model.Response{
				ID:          responseID,
				SurveyID:    surveyID,
				Respondent:  nullString(respondent),
				SubmittedAt: submittedAt.UTC(),
				Answers:     []model.Answer{},
			})
			last++
		}
		r := &responses[last]

		if !answerID.Valid {
			continue
		}
		if len(r.Answers) == 0 || lastAnswerID != answerID.Int64 {
			r.Answers = append(r.Answers, model.Answer{
				QuestionID: questionID.Int64,
				TextAnswer: nullString(textAnswer),
			})
			lastAnswerID = answerID.Int64
		}
		if choiceID.Valid {
			a := &r.Answers[len(r.Answers)-1]
			a.SelectedChoices = append(a.SelectedChoices, choiceID.Int64)
		}
	}
	return responses, errors.Wrap(rows.Err(), "db.get_responses")
}

// CreateResponse stores a response and all its answers in one transaction.
func (s *Store) CreateResponse(ctx context.Context, surveyID int64, respondent *string, answers []model.Answer) (model.Response, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	submittedAt := s.now().UTC()
	var responseID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO response (survey_id, respondent, submitted_at) VALUES (?, ?, ?)
		RETURNING id`,
		surveyID,
		respondent,
		submittedAt,
	).Scan(&responseID)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "db.insert_response")
	}

	answerStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (response_id, question_id, position, text_answer)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "db.insert_response.answers.prepare")
	}
	defer answerStmt.Close()

	choiceStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer_choice (answer_id, choice_id, position)
		VALUES (?, ?, ?)`)
	if err != nil {
		return model.Response{}, errors.Wrap(err, "db.insert_response.choices.prepare")
	}
	defer choiceStmt.Close()

	for i, a := range answers {
		var answerID int64
		err = answerStmt.QueryRowContext(ctx, responseID, a.QuestionID, i, a.TextAnswer).Scan(&answerID)
		if err != nil {
			return model.Response{}, errors.Wrap(err, "db.insert_response.answers.insert")
		}
		for j, choiceID := range a.SelectedChoices {
			_, err = choiceStmt.ExecContext(ctx, answerID, choiceID, j)
			if err != nil {
				return model.Response{}, errors.Wrap(err, "db.insert_response.choices.insert")
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return model.Response{}, errors.Wrap(err, "db.insert_response.commit")
	}

	return model.Response{
		ID:          responseID,
		SurveyID:    surveyID,
		Respondent:  respondent,
		SubmittedAt: submittedAt,
		Answers:     answers,
	}, nil
}

func getSchema(ctx context.Context, q querier, surveyID int64) (model.Survey, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, version, title, description, active, requires_organization, organization_id
		FROM survey
		WHERE id = ?`,
		surveyID,
	)
	survey, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, ErrNotFound
	}
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.get_schema")
	}

	rows, err := q.QueryContext(ctx, `
		SELECT
			q.id, q.text, q.type, q.required,
			c.id, c.text
		FROM question q
		LEFT OUTER JOIN choice c ON (c.question_id = q.id)
		WHERE q.survey_id = ?
		ORDER BY q.position, c.position`,
		surveyID,
	)
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "db.get_schema.questions")
	}
	defer rows.Close()

	survey.Questions = []model.Question{}
	for rows.Next() {
		var (
			qu         model.Question
			choiceID   sql.NullInt64
			choiceText sql.NullString
		)
		err = rows.Scan(&qu.ID, &qu.Text, &qu.Type, &qu.Required, &choiceID, &choiceText)
		if err != nil {
			return model.Survey{}, errors.Wrap(err, "db.get_schema.scan")
		}

		last := len(survey.Questions) - 1
		if last < 0 || survey.Questions[last].ID != qu.ID {
			qu.Choices = []model.Choice{}
			survey.Questions = append(survey.Questions, qu)
			last++
		}
		if choiceID.Valid {
			prev := &survey.Questions[last]
			prev.Choices = append(prev.Choices, model.Choice{ID: choiceID.Int64, Text: choiceText.String})
		}
	}
	if err = rows.Err(); err != nil {
		return model.Survey{}, errors.Wrap(err, "db.get_schema.questions")
	}
	return survey, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row scanner) (model.Survey, error) {
	var (
		s     model.Survey
		orgID sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.Version, &s.Title, &s.Description, &s.Active, &s.RequiresOrganization, &orgID)
	if err != nil {
		return model.Survey{}, err
	}
	if orgID.Valid {
		s.OrganizationID = &orgID.Int64
	}
	return s, nil
}

func surveyExists(ctx context.Context, q querier, surveyID int64) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM survey WHERE id = ?`, surveyID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return errors.Wrap(err, "db.get_survey")
}

// ownedIDs returns the question and choice ids currently belonging to a survey.
func ownedIDs(ctx context.Context, q querier, surveyID int64) (questions, choices map[int64]bool, err error) {
	rows, err := q.QueryContext(ctx, `
		SELECT q.id, c.id
		FROM question q
		LEFT OUTER JOIN choice c ON (c.question_id = q.id)
		WHERE q.survey_id = ?`,
		surveyID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	questions = map[int64]bool{}
	choices = map[int64]bool{}
	for rows.Next() {
		var questionID int64
		var choiceID sql.NullInt64
		if err = rows.Scan(&questionID, &choiceID); err != nil {
			return nil, nil, err
		}
		questions[questionID] = true
		if choiceID.Valid {
			choices[choiceID.Int64] = true
		}
	}
	return questions, choices, rows.Err()
}

// insertQuestions inserts questions and their choices in order. An id is
// reused only if present in keepQuestions/keepChoices, and at most once.
func insertQuestions(ctx context.Context, tx *sql.Tx, surveyID int64, questions []model.Question, keepQuestions, keepChoices map[int64]bool) error {
	questionStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (id, survey_id, position, text, type, required)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)
	if err != nil {
		return errors.Wrap(err, "questions.prepare")
	}
	defer questionStmt.Close()

	choiceStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO choice (id, question_id, position, text)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "choices.prepare")
	}
	defer choiceStmt.Close()

	for i, q := range questions {
		var questionID int64
		err = questionStmt.QueryRowContext(ctx,
			reuse(q.ID, keepQuestions), surveyID, i, q.Text, string(q.Type), q.Required,
		).Scan(&questionID)
		if err != nil {
			return errors.Wrap(err, "questions.insert")
		}

		for j, c := range q.Choices {
			_, err = choiceStmt.ExecContext(ctx, reuse(c.ID, keepChoices), questionID, j, c.Text)
			if err != nil {
				return errors.Wrap(err, "choices.insert")
			}
		}
	}
	return nil
}

// reuse yields id as a bind parameter if it may be kept, or NULL so that
// SQLite assigns a fresh one.
func reuse(id int64, keep map[int64]bool) sql.NullInt64 {
	if id == 0 || !keep[id] {
		return sql.NullInt64{}
	}
	delete(keep, id)
	return sql.NullInt64{Int64: id, Valid: true}
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
