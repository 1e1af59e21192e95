package invocations

import (
	"context"
	"time"
)

// Record is one handled callback invocation, success or failure. Codes are
// stored sanitized (prefix only) — the full code lives solely in the
// delivery files SV2 consumes.
type Record struct {
	ID         string
	Origin     string
	Outcome    string
	CodePrefix string
	State      string
	CreatedAt  time.Time
}

// Repository persists invocation outcomes so /auth/status survives bridge
// restarts.
type Repository interface {
	// Create appends an invocation record.
	Create(ctx context.Context, rec *Record) error
	// Latest returns the most recent record, or nil when none exist.
	Latest(ctx context.Context) (*Record, error)
	// Count returns the number of invocations handled so far.
	Count(ctx context.Context) (int64, error)

	Health() error
	Disconnect()
}
