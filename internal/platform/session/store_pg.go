package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationSessions is the SQL DDL for the sessions table. It is safe to
// execute multiple times (uses IF NOT EXISTS); the server runs it at startup
// when a database is configured.
const MigrationSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    token        TEXT PRIMARY KEY,
    session_json JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at
    ON sessions (expires_at);
`

// pgRow represents a single row returned by QueryRow.
type pgRow interface {
	Scan(dest ...any) error
}

// pgConn is the minimal database interface required by PGStore. Both
// *pgxpool.Pool (via a thin adapter) and test mocks implement this.
type pgConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgRow
	Exec(ctx context.Context, sql string, args ...any) error
}

// PGStore is a PostgreSQL-backed Store. Sessions survive restarts and are
// shared across instances; rows carry an explicit expires_at column that
// every read filters on.
type PGStore struct {
	db  pgConn
	ttl time.Duration
}

// NewPGStore creates a PG-backed store. The db parameter must satisfy the
// pgConn interface -- use NewPGStoreFromPool to wrap a *pgxpool.Pool, or
// pass a mock in tests.
func NewPGStore(db pgConn, ttl time.Duration) *PGStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PGStore{db: db, ttl: ttl}
}

// Set inserts or replaces (upsert) the session row.
func (s *PGStore) Set(ctx context.Context, sess *Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	const query = `INSERT INTO sessions (token, session_json, created_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (token) DO UPDATE SET session_json = EXCLUDED.session_json,
                                  created_at   = EXCLUDED.created_at,
                                  expires_at   = EXCLUDED.expires_at`

	if err := s.db.Exec(ctx, query, sess.Token, data, sess.CreatedAt, sess.CreatedAt.Add(s.ttl)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get selects the session only if it has not expired. Returns (nil, nil)
// when no live row matches.
func (s *PGStore) Get(ctx context.Context, token string) (*Session, error) {
	const query = `SELECT session_json FROM sessions
WHERE token = $1 AND expires_at > now()`

	var data []byte
	if err := s.db.QueryRow(ctx, query, token).Scan(&data); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Clear deletes the session row. Clearing an unknown token is not an error.
func (s *PGStore) Clear(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	if err := s.db.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Cleanup deletes all expired rows from the table.
func (s *PGStore) Cleanup(ctx context.Context) error {
	const query = `DELETE FROM sessions WHERE expires_at <= now()`
	if err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("cleanup sessions: %w", err)
	}
	return nil
}

// isNoRows returns true when the error represents a "no rows" condition.
// It works with both pgx (pgx.ErrNoRows) and the mock used in tests.
func isNoRows(err error) bool {
	if err == pgx.ErrNoRows {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "no rows")
}

// pgxPoolWrapper wraps a *pgxpool.Pool so it satisfies the pgConn interface.
// The adapter is necessary because pgxpool.Pool.Exec returns
// (pgconn.CommandTag, error) whereas pgConn.Exec returns only error.
type pgxPoolWrapper struct {
	pool *pgxpool.Pool
}

func (w *pgxPoolWrapper) QueryRow(ctx context.Context, sql string, args ...any) pgRow {
	return w.pool.QueryRow(ctx, sql, args...)
}

func (w *pgxPoolWrapper) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := w.pool.Exec(ctx, sql, args...)
	return err
}

// NewPGStoreFromPool creates a PG-backed store directly from a
// *pgxpool.Pool. This is the constructor production code uses.
func NewPGStoreFromPool(pool *pgxpool.Pool, ttl time.Duration) *PGStore {
	return &PGStore{db: &pgxPoolWrapper{pool: pool}, ttl: ttl}
}
