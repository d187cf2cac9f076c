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

// compile-time check that *DB implements repository.AuthorizationRepository
var _ repository.AuthorizationRepository = (*DB)(nil)

// CreateAuthorization links an external (provider, uid) identity to a
// user. The UNIQUE(provider, uid) index makes a concurrent duplicate a
// Conflict, which the identity resolver handles by re-reading the
// winning row.
func (db *DB) CreateAuthorization(ctx context.Context, a *model.Authorization) error {
	a.ID = xid.New().String()
	a.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO authorizations (id, user_id, provider, uid, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Provider, a.UID, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("identity %s/%s is already linked", a.Provider, a.UID))
		}
		return fmt.Errorf("sqlite: inserting authorization (%s/%s): %w", a.Provider, a.UID, err)
	}
	return nil
}

// GetAuthorization looks up an identity link by its (provider, uid)
// pair. Returns apperror.ErrNotFound when the identity is unknown.
func (db *DB) GetAuthorization(ctx context.Context, provider, uid string) (*model.Authorization, error) {
	var a model.Authorization
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, provider, uid, created_at
		 FROM authorizations WHERE provider = ? AND uid = ?`,
		provider, uid,
	).Scan(&a.ID, &a.UserID, &a.Provider, &a.UID, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("authorization", provider+"/"+uid)
		}
		return nil, fmt.Errorf("sqlite: getting authorization %s/%s: %w", provider, uid, err)
	}
	return &a, nil
}

func (db *DB) ListAuthorizationsByUser(ctx context.Context, userID string) ([]model.Authorization, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, provider, uid, created_at
		 FROM authorizations WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing authorizations for user %s: %w", userID, err)
	}
	defer rows.Close()

	auths := []model.Authorization{}
	for rows.Next() {
		var a model.Authorization
		if err := rows.Scan(&a.ID, &a.UserID, &a.Provider, &a.UID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning authorization row: %w", err)
		}
		auths = append(auths, a)
	}
	return auths, rows.Err()
}

func (db *DB) DeleteAuthorizationsByUser(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM authorizations WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting authorizations for user %s: %w", userID, err)
	}
	return nil
}
