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

// compile-time check that *DB implements repository.QuestionRepository
var _ repository.QuestionRepository = (*DB)(nil)

func (db *DB) CreateQuestion(ctx context.Context, q *model.Question) error {
	now := time.Now()
	q.ID = xid.New().String()
	q.CreatedAt = now
	q.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO questions (id, user_id, title, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserID, q.Title, q.Body, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting question: %w", err)
	}
	return nil
}

func (db *DB) GetQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, body, created_at, updated_at
		 FROM questions WHERE id = ?`, id,
	).Scan(&q.ID, &q.UserID, &q.Title, &q.Body, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("question", id)
		}
		return nil, fmt.Errorf("sqlite: getting question %s: %w", id, err)
	}
	return &q, nil
}

// ListQuestions returns questions newest first, paginated.
func (db *DB) ListQuestions(ctx context.Context, opts repository.ListOptions) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, body, created_at, updated_at
		 FROM questions ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (db *DB) ListQuestionsByUser(ctx context.Context, userID string) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, body, created_at, updated_at
		 FROM questions WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions for user %s: %w", userID, err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows *sql.Rows) ([]model.Question, error) {
	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.UserID, &q.Title, &q.Body, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (db *DB) DeleteQuestion(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting question %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("question", id)
	}
	return nil
}
