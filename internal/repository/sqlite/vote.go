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

// compile-time check that *DB implements repository.VoteRepository
var _ repository.VoteRepository = (*DB)(nil)

// CreateVote inserts a vote. The UNIQUE(user_id, votable_type,
// votable_id) index arbitrates concurrent duplicates: exactly one
// insert commits, the rest come back as Conflict.
func (db *DB) CreateVote(ctx context.Context, v *model.Vote) error {
	v.ID = xid.New().String()
	v.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO votes (id, user_id, votable_type, votable_id, value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, string(v.Votable.Kind), v.Votable.ID, v.Value, v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("you have already voted on this " + string(v.Votable.Kind))
		}
		return fmt.Errorf("sqlite: inserting vote on %s %s: %w", v.Votable.Kind, v.Votable.ID, err)
	}
	return nil
}

func (db *DB) GetVote(ctx context.Context, userID string, votable model.Target) (*model.Vote, error) {
	var v model.Vote
	var kind string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, votable_type, votable_id, value, created_at
		 FROM votes WHERE user_id = ? AND votable_type = ? AND votable_id = ?`,
		userID, string(votable.Kind), votable.ID,
	).Scan(&v.ID, &v.UserID, &kind, &v.Votable.ID, &v.Value, &v.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("vote", votable.ID)
		}
		return nil, fmt.Errorf("sqlite: getting vote on %s %s: %w", votable.Kind, votable.ID, err)
	}
	v.Votable.Kind = model.TargetKind(kind)
	return &v, nil
}

// DeleteVote removes the user's vote on the votable. Returns
// apperror.ErrNotFound when there is no vote to delete, so the service
// can report "no vote to recall" without a prior read.
func (db *DB) DeleteVote(ctx context.Context, userID string, votable model.Target) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM votes WHERE user_id = ? AND votable_type = ? AND votable_id = ?`,
		userID, string(votable.Kind), votable.ID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting vote on %s %s: %w", votable.Kind, votable.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("vote", votable.ID)
	}
	return nil
}

// Rating sums the vote values for the votable; 0 when nobody voted.
func (db *DB) Rating(ctx context.Context, votable model.Target) (int, error) {
	var rating int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(value), 0) FROM votes WHERE votable_type = ? AND votable_id = ?`,
		string(votable.Kind), votable.ID,
	).Scan(&rating)
	if err != nil {
		return 0, fmt.Errorf("sqlite: computing rating for %s %s: %w", votable.Kind, votable.ID, err)
	}
	return rating, nil
}

func (db *DB) DeleteVotesByVotable(ctx context.Context, votable model.Target) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM votes WHERE votable_type = ? AND votable_id = ?`,
		string(votable.Kind), votable.ID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting votes on %s %s: %w", votable.Kind, votable.ID, err)
	}
	return nil
}

func (db *DB) DeleteVotesByUser(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM votes WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting votes by user %s: %w", userID, err)
	}
	return nil
}
