package worklogmock

import (
	"context"
	"errors"
	"time"

	domain "worklog-backend/internal/domain/worklog"
)

// Log is a function-backed mock that satisfies domain.Log.
// Only set the methods a test needs; the rest fall through to stubs.
type Log struct {
	AppendFn      func(ctx context.Context, rec *domain.Record) (int, error)
	FindOpenRowFn func(ctx context.Context, subjectKey string) (*domain.Record, error)
	CloseFn       func(ctx context.Context, row int, closedAt time.Time, note string) error
	ApproveFn     func(ctx context.Context, row int, actorID string, status domain.Status, now time.Time) error
	LoadAllFn     func(ctx context.Context) ([]domain.Record, error)
	RowFn         func(ctx context.Context, row int) (*domain.Record, error)
	DeleteRowFn   func(ctx context.Context, row int) error
}

var errNotImplemented = errors.New("not implemented")

func (m *Log) Append(ctx context.Context, rec *domain.Record) (int, error) {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, rec)
	}
	return 0, errNotImplemented
}

func (m *Log) FindOpenRow(ctx context.Context, subjectKey string) (*domain.Record, error) {
	if m.FindOpenRowFn != nil {
		return m.FindOpenRowFn(ctx, subjectKey)
	}
	return nil, errNotImplemented
}

func (m *Log) Close(ctx context.Context, row int, closedAt time.Time, note string) error {
	if m.CloseFn != nil {
		return m.CloseFn(ctx, row, closedAt, note)
	}
	return nil
}

func (m *Log) Approve(ctx context.Context, row int, actorID string, status domain.Status, now time.Time) error {
	if m.ApproveFn != nil {
		return m.ApproveFn(ctx, row, actorID, status, now)
	}
	return nil
}

func (m *Log) LoadAll(ctx context.Context) ([]domain.Record, error) {
	if m.LoadAllFn != nil {
		return m.LoadAllFn(ctx)
	}
	return nil, errNotImplemented
}

func (m *Log) Row(ctx context.Context, row int) (*domain.Record, error) {
	if m.RowFn != nil {
		return m.RowFn(ctx, row)
	}
	return nil, errNotImplemented
}

func (m *Log) DeleteRow(ctx context.Context, row int) error {
	if m.DeleteRowFn != nil {
		return m.DeleteRowFn(ctx, row)
	}
	return nil
}
