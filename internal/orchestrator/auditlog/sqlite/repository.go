// Package sqlite provides the SQLite-backed implementation of
// auditlog.Repository.
//
// WAL mode is enabled on Open so readers never block the saga goroutine
// writing log rows. We use modernc.org/sqlite rather than mattn/go-sqlite3
// to avoid CGO, which keeps Alpine/Docker builds trivial.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/threedfly/order-orchestrator/internal/orchestrator/auditlog"

	_ "modernc.org/sqlite"
)

// schema is applied once on startup. Rows are inserted open (PROCESSING)
// and updated exactly once when the saga finalizes; everything else about
// an execution lives in the step trace returned to the caller.
const schema = `
CREATE TABLE IF NOT EXISTS order_processing_logs (
    -- Invocation id: UUID generated by the recorder.
    id              TEXT PRIMARY KEY,

    customer_id     INTEGER NOT NULL,
    product_id      TEXT    NOT NULL,

    -- Decimal stored as TEXT to avoid float drift.
    total_amount    TEXT    NOT NULL,

    -- PROCESSING | COMPLETED | FAILED
    status          TEXT    NOT NULL,

    -- RFC3339 TEXT timestamps, SQLite idiom.
    started_at      TEXT    NOT NULL,
    completed_at    TEXT,

    error_message   TEXT    NOT NULL DEFAULT '',

    -- W3C ids of the span active when the entry was opened; joins a row
    -- with its distributed trace.
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_processing_logs_customer ON order_processing_logs(customer_id, started_at);
CREATE INDEX IF NOT EXISTS idx_processing_logs_trace ON order_processing_logs(trace_id);
`

const timeLayout = "2006-01-02T15:04:05.999999999Z"

// Repository is the SQLite implementation of auditlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Insert persists a new open entry. Safe for concurrent use.
func (r *Repository) Insert(ctx context.Context, entry *auditlog.Entry) error {
	const q = `
		INSERT INTO order_processing_logs
			(id, customer_id, product_id, total_amount, status, started_at, error_message, trace_id, span_id)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.ID,
		entry.CustomerID,
		entry.ProductID,
		entry.TotalAmount.String(),
		string(entry.Status),
		entry.StartedAt.UTC().Format(timeLayout),
		entry.ErrorMessage,
		entry.TraceID,
		entry.SpanID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert processing log %q: %w", entry.ID, err)
	}
	return nil
}

// Finalize records the terminal status of an entry.
func (r *Repository) Finalize(ctx context.Context, id string, status auditlog.Status, completedAt time.Time, errMsg string) error {
	const q = `
		UPDATE order_processing_logs
		SET    status = ?, completed_at = ?, error_message = ?
		WHERE  id = ?`

	res, err := r.db.ExecContext(ctx, q,
		string(status),
		completedAt.UTC().Format(timeLayout),
		errMsg,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: finalize processing log %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sqlite: processing log %q not found", id)
	}
	return nil
}

// GetByID returns a single entry, mainly for tests and ad-hoc inspection.
func (r *Repository) GetByID(ctx context.Context, id string) (*auditlog.Entry, error) {
	const q = `
		SELECT id, customer_id, product_id, total_amount, status,
		       started_at, COALESCE(completed_at, ''), error_message, trace_id, span_id
		FROM   order_processing_logs
		WHERE  id = ?`

	row := r.db.QueryRowContext(ctx, q, id)

	var (
		entry       auditlog.Entry
		amount      string
		startedAt   string
		completedAt string
	)
	err := row.Scan(
		&entry.ID,
		&entry.CustomerID,
		&entry.ProductID,
		&amount,
		&entry.Status,
		&startedAt,
		&completedAt,
		&entry.ErrorMessage,
		&entry.TraceID,
		&entry.SpanID,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: processing log %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get processing log %q: %w", id, err)
	}

	if entry.TotalAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("sqlite: parse amount %q: %w", amount, err)
	}
	if entry.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if completedAt != "" {
		t, err := parseTime(completedAt)
		if err != nil {
			return nil, err
		}
		entry.CompletedAt = &t
	}
	return &entry, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
