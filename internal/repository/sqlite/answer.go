package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/study-and-research/QnA/internal/apperror"
	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/repository"
)

// compile-time check that *DB implements repository.AnswerRepository
var _ repository.AnswerRepository = (*DB)(nil)

// answerColumns selects answer fields plus the derived rating. Rating
// is never stored — it is the sum of vote values at read time, so a
// vote insert or recall is immediately visible.
const answerColumns = `
	a.id, a.question_id, a.user_id, a.body, a.accepted, a.created_at, a.updated_at,
	COALESCE((SELECT SUM(v.value) FROM votes v
	          WHERE v.votable_type = 'answer' AND v.votable_id = a.id), 0) AS rating`

func (db *DB) CreateAnswer(ctx context.Context, a *model.Answer) error {
	now := time.Now()
	a.ID = xid.New().String()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO answers (id, question_id, user_id, body, accepted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		a.ID, a.QuestionID, a.UserID, a.Body, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting answer for question %s: %w", a.QuestionID, err)
	}
	return nil
}

func (db *DB) GetAnswerByID(ctx context.Context, id string) (*model.Answer, error) {
	var a model.Answer
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+answerColumns+` FROM answers a WHERE a.id = ?`, id,
	).Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Body, &a.Accepted, &a.CreatedAt, &a.UpdatedAt, &a.Rating)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("answer", id)
		}
		return nil, fmt.Errorf("sqlite: getting answer %s: %w", id, err)
	}
	return &a, nil
}

// ListAnswersByQuestion returns a question's answers in the requested
// order. There is no default: the caller picks accepted-first or
// newest-first explicitly.
func (db *DB) ListAnswersByQuestion(ctx context.Context, questionID string, order repository.AnswerOrder) ([]model.Answer, error) {
	var orderBy string
	switch order {
	case repository.OrderAcceptedFirst:
		orderBy = `a.accepted DESC, a.created_at DESC, a.id DESC`
	case repository.OrderNewestFirst:
		orderBy = `a.created_at DESC, a.id DESC`
	default:
		return nil, apperror.ValidationFailed("order", fmt.Sprintf("unknown answer order %q", order))
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+answerColumns+` FROM answers a WHERE a.question_id = ? ORDER BY `+orderBy,
		questionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing answers for question %s: %w", questionID, err)
	}
	defer rows.Close()
	return scanAnswers(rows)
}

func (db *DB) ListAnswersByUser(ctx context.Context, userID string) ([]model.Answer, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+answerColumns+` FROM answers a WHERE a.user_id = ? ORDER BY a.created_at DESC, a.id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing answers for user %s: %w", userID, err)
	}
	defer rows.Close()
	return scanAnswers(rows)
}

func scanAnswers(rows *sql.Rows) ([]model.Answer, error) {
	answers := []model.Answer{}
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Body, &a.Accepted, &a.CreatedAt, &a.UpdatedAt, &a.Rating); err != nil {
			return nil, fmt.Errorf("sqlite: scanning answer row: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (db *DB) UpdateAnswerBody(ctx context.Context, id, body string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE answers SET body = ?, updated_at = ? WHERE id = ?`,
		body, time.Now(), id)
	if err != nil {
		return fmt.Errorf("sqlite: updating answer %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("answer", id)
	}
	return nil
}

// AcceptAnswer marks answerID accepted and clears any previously
// accepted answer of the same question. Both updates run in one
// transaction: either the whole flag move commits or none of it does,
// so the question never shows two accepted answers.
func (db *DB) AcceptAnswer(ctx context.Context, questionID, answerID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning accept transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	if _, err := tx.ExecContext(ctx,
		`UPDATE answers SET accepted = 0, updated_at = ?
		 WHERE question_id = ? AND accepted = 1 AND id != ?`,
		now, questionID, answerID); err != nil {
		return fmt.Errorf("sqlite: clearing previous accepted answer: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE answers SET accepted = 1, updated_at = ?
		 WHERE id = ? AND question_id = ?`,
		now, answerID, questionID)
	if err != nil {
		return fmt.Errorf("sqlite: accepting answer %s: %w", answerID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Rollback via defer: the clear above must not survive either.
		return apperror.NotFound("answer", answerID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing accept transaction: %w", err)
	}
	return nil
}

func (db *DB) DeleteAnswer(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM answers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting answer %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("answer", id)
	}
	return nil
}
