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

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*DB)(nil)

func (db *DB) CreateComment(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	c.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, user_id, commentable_type, commentable_id, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, string(c.Commentable.Kind), c.Commentable.ID, c.Body, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment on %s %s: %w", c.Commentable.Kind, c.Commentable.ID, err)
	}
	return nil
}

func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	var kind string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, commentable_type, commentable_id, body, created_at
		 FROM comments WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &kind, &c.Commentable.ID, &c.Body, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	c.Commentable.Kind = model.TargetKind(kind)
	return &c, nil
}

// ListCommentsByCommentable returns comments oldest first, the order
// they read naturally under a post.
func (db *DB) ListCommentsByCommentable(ctx context.Context, commentable model.Target) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, commentable_type, commentable_id, body, created_at
		 FROM comments WHERE commentable_type = ? AND commentable_id = ?
		 ORDER BY created_at ASC, id ASC`,
		string(commentable.Kind), commentable.ID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments on %s %s: %w", commentable.Kind, commentable.ID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var kind string
		if err := rows.Scan(&c.ID, &c.UserID, &kind, &c.Commentable.ID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		c.Commentable.Kind = model.TargetKind(kind)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}

func (db *DB) DeleteCommentsByCommentable(ctx context.Context, commentable model.Target) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE commentable_type = ? AND commentable_id = ?`,
		string(commentable.Kind), commentable.ID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comments on %s %s: %w", commentable.Kind, commentable.ID, err)
	}
	return nil
}

func (db *DB) DeleteCommentsByUser(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comments by user %s: %w", userID, err)
	}
	return nil
}
