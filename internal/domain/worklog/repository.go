package worklog

import (
	"context"
	"time"
)

type Log interface {
	// Append writes a new open record and returns the sheet row it landed on.
	Append(ctx context.Context, rec *Record) (int, error)

	// FindOpenRow scans newest-first for the subject's open record.
	// Returns ErrNoOpenRecord when none exists.
	FindOpenRow(ctx context.Context, subjectKey string) (*Record, error)

	// Close fills the checkout timestamp and note on an open row.
	// The non-empty note precondition is enforced here, not in callers.
	Close(ctx context.Context, row int, closedAt time.Time, note string) error

	// Approve stamps the status label and "actor (timestamp)" on a row.
	Approve(ctx context.Context, row int, actorID string, status Status, now time.Time) error

	// LoadAll reads the whole sheet; header-only sheets yield an empty slice.
	LoadAll(ctx context.Context) ([]Record, error)

	// Row re-reads a single row fresh from the store.
	Row(ctx context.Context, row int) (*Record, error)

	// DeleteRow removes a data row (admin override path).
	DeleteRow(ctx context.Context, row int) error
}
