package sheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"worklog-backend/internal/domain/grid"
	"worklog-backend/internal/domain/worklog"
)

// Column layout, 1-indexed. Order is part of the wire contract with the
// sheet; Header must match row 1 exactly.
const (
	colSequence = 1
	colSubject  = 2
	colOpened   = 3
	colClosed   = 4
	colNote     = 5
	colStatus   = 6
	colApprover = 7

	colCount     = 7
	firstDataRow = 2
)

var Header = []string{"Seq", "Subject", "Checked In", "Checked Out", "Note", "Status", "Approver"}

type WorklogRepository struct{ grid grid.Grid }

func NewWorklogRepository(g grid.Grid) *WorklogRepository { return &WorklogRepository{grid: g} }

// Append assigns the next sequence number and writes the record into the
// first row after the last non-empty subject cell. The row is computed
// from the subject column, not the row count, so a stale row with data in
// other columns but a blank subject is never overwritten.
func (r *WorklogRepository) Append(ctx context.Context, rec *worklog.Record) (int, error) {
	if strings.TrimSpace(rec.SubjectKey) == "" {
		return 0, worklog.ErrEmptyKey
	}

	seqCol, err := r.grid.Column(ctx, colSequence)
	if err != nil {
		return 0, fmt.Errorf("read sequence column: %w", err)
	}
	rec.Sequence = nextSequence(seqCol)

	subjCol, err := r.grid.Column(ctx, colSubject)
	if err != nil {
		return 0, fmt.Errorf("read subject column: %w", err)
	}
	row := insertionRow(subjCol)

	if err := r.grid.UpdateRange(ctx, row, colSequence, serialize(rec)); err != nil {
		return 0, fmt.Errorf("write row %d: %w", row, err)
	}
	rec.Row = row
	return row, nil
}

// nextSequence is max(existing numeric values)+1, not row count + 1, so
// sequences stay unique across manual deletions and gaps.
func nextSequence(seqCol []string) int {
	max := 0
	for i, v := range seqCol {
		if i == 0 {
			continue // header
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// insertionRow returns the row after the last non-empty subject cell.
func insertionRow(subjCol []string) int {
	last := 1 // header row
	for i, v := range subjCol {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(v) != "" {
			last = i + 1
		}
	}
	if last < firstDataRow-1 {
		return firstDataRow
	}
	return last + 1
}

// FindOpenRow scans from the last row up to the first data row and
// returns the first row whose subject matches (trimmed, case-sensitive)
// and whose checkout cell is blank. Newest-first, because a subject may
// have any number of closed historical rows.
func (r *WorklogRepository) FindOpenRow(ctx context.Context, subjectKey string) (*worklog.Record, error) {
	key := strings.TrimSpace(subjectKey)
	if key == "" {
		return nil, worklog.ErrEmptyKey
	}
	values, err := r.grid.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	for i := len(values) - 1; i >= firstDataRow-1; i-- {
		row := values[i]
		if strings.TrimSpace(cell(row, colSubject)) != key {
			continue
		}
		if strings.TrimSpace(cell(row, colClosed)) != "" {
			continue
		}
		rec := parseRow(i+1, row)
		return &rec, nil
	}
	return nil, worklog.ErrNoOpenRecord
}

// Close validates the note before any write is issued, re-reads the row
// to confirm it is still open, then fills checkout and note cells. The
// two updates are not transactional; callers detect a torn write by
// re-reading the row (see usecase verification).
func (r *WorklogRepository) Close(ctx context.Context, row int, closedAt time.Time, note string) error {
	if strings.TrimSpace(note) == "" {
		return worklog.ErrEmptyNote
	}
	rec, err := r.Row(ctx, row)
	if err != nil {
		return err
	}
	if !rec.Open() {
		return worklog.ErrNoOpenRecord
	}
	if closedAt.Before(rec.OpenedAt) {
		return worklog.ErrBadCloseTime
	}
	if err := r.grid.UpdateCell(ctx, row, colClosed, closedAt.Format(worklog.TimeLayout)); err != nil {
		return fmt.Errorf("write checkout cell: %w", err)
	}
	if err := r.grid.UpdateCell(ctx, row, colNote, note); err != nil {
		return fmt.Errorf("write note cell: %w", err)
	}
	return nil
}

// Approve is idempotent: re-approving overwrites status and approver.
func (r *WorklogRepository) Approve(ctx context.Context, row int, actorID string, status worklog.Status, now time.Time) error {
	if _, err := r.Row(ctx, row); err != nil {
		return err
	}
	if err := r.grid.UpdateCell(ctx, row, colStatus, string(status)); err != nil {
		return fmt.Errorf("write status cell: %w", err)
	}
	stamp := fmt.Sprintf("%s (%s)", actorID, now.Format(worklog.TimeLayout))
	if err := r.grid.UpdateCell(ctx, row, colApprover, stamp); err != nil {
		return fmt.Errorf("write approver cell: %w", err)
	}
	return nil
}

func (r *WorklogRepository) LoadAll(ctx context.Context) ([]worklog.Record, error) {
	values, err := r.grid.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(values) == 0 {
		return []worklog.Record{}, nil
	}
	if err := checkHeader(values[0]); err != nil {
		return nil, err
	}
	out := make([]worklog.Record, 0, len(values)-1)
	for i := firstDataRow - 1; i < len(values); i++ {
		out = append(out, parseRow(i+1, values[i]))
	}
	return out, nil
}

func (r *WorklogRepository) Row(ctx context.Context, row int) (*worklog.Record, error) {
	if row < firstDataRow {
		return nil, worklog.ErrRowNotFound
	}
	values, err := r.grid.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if row > len(values) {
		return nil, worklog.ErrRowNotFound
	}
	rec := parseRow(row, values[row-1])
	return &rec, nil
}

func (r *WorklogRepository) DeleteRow(ctx context.Context, row int) error {
	if row < firstDataRow {
		return worklog.ErrRowNotFound
	}
	if err := r.grid.DeleteRow(ctx, row); err != nil {
		return fmt.Errorf("delete row %d: %w", row, err)
	}
	return nil
}

func checkHeader(got []string) error {
	for i, want := range Header {
		if strings.TrimSpace(cell(got, i+1)) != want {
			return fmt.Errorf("%w: column %d is %q, want %q",
				worklog.ErrBadHeader, i+1, cell(got, i+1), want)
		}
	}
	return nil
}

func cell(row []string, col int) string {
	if col-1 < 0 || col-1 >= len(row) {
		return ""
	}
	return row[col-1]
}

func serialize(rec *worklog.Record) []string {
	closed := ""
	if !rec.ClosedAt.IsZero() {
		closed = rec.ClosedAt.Format(worklog.TimeLayout)
	}
	return []string{
		strconv.Itoa(rec.Sequence),
		rec.SubjectKey,
		rec.OpenedAt.Format(worklog.TimeLayout),
		closed,
		rec.Note,
		string(rec.Status),
		rec.Approver,
	}
}

// parseRow is tolerant of ragged rows and junk cells: a bad sequence
// parses as 0, an unparseable timestamp as the zero time. A row with a
// checkout timestamp but an empty note is closed, not open.
func parseRow(row int, cells []string) worklog.Record {
	seq, _ := strconv.Atoi(strings.TrimSpace(cell(cells, colSequence)))
	return worklog.Record{
		Row:        row,
		Sequence:   seq,
		SubjectKey: cell(cells, colSubject),
		OpenedAt:   parseTime(cell(cells, colOpened)),
		ClosedAt:   parseTime(cell(cells, colClosed)),
		Note:       cell(cells, colNote),
		Status:     worklog.Status(strings.TrimSpace(cell(cells, colStatus))),
		Approver:   cell(cells, colApprover),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(worklog.TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
