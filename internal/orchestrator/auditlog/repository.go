package auditlog

import (
	"context"
	"time"
)

// Repository is the persistence port for processing-log entries. The
// coordinator depends on this abstraction, not on SQLite directly, so the
// implementation can be swapped for Postgres or an in-memory fake in tests.
type Repository interface {
	// Insert persists a new PROCESSING entry.
	Insert(ctx context.Context, entry *Entry) error

	// Finalize sets the terminal status, completion time and error message
	// of an existing entry. It is called at most once per entry.
	Finalize(ctx context.Context, id string, status Status, completedAt time.Time, errMsg string) error
}
