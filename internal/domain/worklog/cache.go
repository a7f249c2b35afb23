package worklog

import "context"

// SnapshotCache fronts LoadAll for listing only. Mutating flows must
// never locate rows through it, and must invalidate before returning.
type SnapshotCache interface {
	Get(ctx context.Context) ([]Record, bool)
	Set(ctx context.Context, recs []Record)
	Invalidate(ctx context.Context) error
}
