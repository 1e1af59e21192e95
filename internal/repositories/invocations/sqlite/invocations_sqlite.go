package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	irepo "github.com/sv2linux/sv2-bridge/pkg/repositories/invocations"
	_ "modernc.org/sqlite"
)

// SQLiteRepo is the SQLite-backed invocation audit store.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Pragmas safe for simple single-process usage
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteRepo{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS invocations (
    id TEXT PRIMARY KEY,
    origin TEXT NOT NULL,
    outcome TEXT NOT NULL,
    code_prefix TEXT,
    state TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at);
`)
	return err
}

func (r *SQLiteRepo) Disconnect() { _ = r.db.Close() }

func (r *SQLiteRepo) Health() error {
	return r.db.Ping()
}

// Ensure interface compliance
var _ irepo.Repository = (*SQLiteRepo)(nil)

func (r *SQLiteRepo) Create(ctx context.Context, rec *irepo.Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("invocation record requires an id")
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invocations (id, origin, outcome, code_prefix, state, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Origin, rec.Outcome, rec.CodePrefix, rec.State, created.UTC())
	return err
}

func (r *SQLiteRepo) Latest(ctx context.Context) (*irepo.Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, origin, outcome, code_prefix, state, created_at FROM invocations ORDER BY created_at DESC, id DESC LIMIT 1`)
	var rec irepo.Record
	if err := row.Scan(&rec.ID, &rec.Origin, &rec.Outcome, &rec.CodePrefix, &rec.State, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *SQLiteRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invocations`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
