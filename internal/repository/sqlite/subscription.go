package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/study-and-research/QnA/internal/model"
	"github.com/study-and-research/QnA/internal/repository"
)

// compile-time check that *DB implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*DB)(nil)

// Subscribe adds the question to the user's subscribed set. INSERT OR
// IGNORE keeps it set-like: subscribing twice leaves exactly one row.
func (db *DB) Subscribe(ctx context.Context, userID, questionID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscriptions (user_id, question_id, created_at)
		 VALUES (?, ?, ?)`,
		userID, questionID, time.Now())
	if err != nil {
		return fmt.Errorf("sqlite: subscribing user %s to question %s: %w", userID, questionID, err)
	}
	return nil
}

func (db *DB) Unsubscribe(ctx context.Context, userID, questionID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_id = ? AND question_id = ?`,
		userID, questionID)
	if err != nil {
		return fmt.Errorf("sqlite: unsubscribing user %s from question %s: %w", userID, questionID, err)
	}
	return nil
}

func (db *DB) IsSubscribed(ctx context.Context, userID, questionID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = ? AND question_id = ?`,
		userID, questionID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking subscription: %w", err)
	}
	return count > 0, nil
}

// ListSubscribers returns the users subscribed to a question, in
// subscription order. Consumed by the new-answer notification path.
func (db *DB) ListSubscribers(ctx context.Context, questionID string) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.password_hash, u.created_at, u.updated_at
		 FROM users u
		 JOIN subscriptions s ON s.user_id = u.id
		 WHERE s.question_id = ?
		 ORDER BY s.created_at ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subscribers of question %s: %w", questionID, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subscriber row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (db *DB) DeleteSubscriptionsByUser(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting subscriptions of user %s: %w", userID, err)
	}
	return nil
}

func (db *DB) DeleteSubscriptionsByQuestion(ctx context.Context, questionID string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM subscriptions WHERE question_id = ?`, questionID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting subscriptions for question %s: %w", questionID, err)
	}
	return nil
}
