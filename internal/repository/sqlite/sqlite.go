// Package sqlite implements the repository interfaces on top of an
// embedded SQLite database.
//
// The driver is modernc.org/sqlite — a pure Go translation of the
// SQLite sources, so no C toolchain is needed and cross-compilation
// stays painless. Use ":memory:" as the path for tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, configures it, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite serializes writes anyway, and a single pooled connection
	// keeps ":memory:" databases from splitting across connections.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — needed
	// for a web server where requests share the pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer it next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe
// to run on every start.
func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		)`,

		// One external identity maps to exactly one local user.
		`CREATE TABLE IF NOT EXISTS authorizations (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			provider   TEXT NOT NULL,
			uid        TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE(provider, uid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_authorizations_user_id ON authorizations(user_id)`,

		`CREATE TABLE IF NOT EXISTS questions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			title      TEXT NOT NULL,
			body       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_user_id ON questions(user_id)`,

		`CREATE TABLE IF NOT EXISTS answers (
			id          TEXT PRIMARY KEY,
			question_id TEXT NOT NULL REFERENCES questions(id),
			user_id     TEXT NOT NULL REFERENCES users(id),
			body        TEXT NOT NULL,
			accepted    INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_user_id ON answers(user_id)`,

		// One vote per (user, votable); value is always +1 or -1.
		`CREATE TABLE IF NOT EXISTS votes (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id),
			votable_type TEXT NOT NULL,
			votable_id   TEXT NOT NULL,
			value        INTEGER NOT NULL CHECK (value IN (-1, 1)),
			created_at   DATETIME NOT NULL,
			UNIQUE(user_id, votable_type, votable_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_votable ON votes(votable_type, votable_id)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL REFERENCES users(id),
			commentable_type TEXT NOT NULL,
			commentable_id   TEXT NOT NULL,
			body             TEXT NOT NULL,
			created_at       DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_commentable ON comments(commentable_type, commentable_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments(user_id)`,

		// Set-like join table: subscribing twice is a no-op.
		`CREATE TABLE IF NOT EXISTS subscriptions (
			user_id     TEXT NOT NULL REFERENCES users(id),
			question_id TEXT NOT NULL REFERENCES questions(id),
			created_at  DATETIME NOT NULL,
			PRIMARY KEY (user_id, question_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// The modernc driver surfaces these as plain errors carrying the SQLite
// message, so we match on it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
