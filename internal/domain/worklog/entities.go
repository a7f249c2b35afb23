package worklog

import (
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Timestamps are stored in the sheet as naive local strings.
const TimeLayout = "2006-01-02 15:04:05"

var (
	ErrEmptyKey     = errors.New("subject key is required")
	ErrEmptyNote    = errors.New("note is required")
	ErrNoOpenRecord = errors.New("no open record for subject")
	ErrOpenRecord   = errors.New("subject already has an open record")
	ErrRowNotFound  = errors.New("row not found")
	ErrPartialWrite = errors.New("partial write detected")
	ErrBadHeader    = errors.New("sheet header does not match expected columns")
	ErrBadCloseTime = errors.New("close time precedes open time")
)

// Record is one sheet row. Row is the 1-indexed sheet row it was read
// from; zero for a record that has not been persisted yet.
type Record struct {
	Row        int
	Sequence   int
	SubjectKey string
	OpenedAt   time.Time
	ClosedAt   time.Time // zero value = still open
	Note       string
	Status     Status
	Approver   string
}

func (r *Record) Open() bool { return r.ClosedAt.IsZero() }

// EffectiveStatus treats a blank status cell as pending.
func (r *Record) EffectiveStatus() Status {
	if strings.TrimSpace(string(r.Status)) == "" {
		return StatusPending
	}
	return r.Status
}
