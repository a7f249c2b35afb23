package worklog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	domain "worklog-backend/internal/domain/worklog"
)

type Usecase struct {
	repo  domain.Log
	cache domain.SnapshotCache
	now   func() time.Time
}

func NewUsecase(r domain.Log, c domain.SnapshotCache) *Usecase {
	return &Usecase{repo: r, cache: c, now: func() time.Time { return time.Now().UTC() }}
}

type CheckInInput struct {
	SubjectKey string `json:"subject_key"`
}

type CheckOutInput struct {
	SubjectKey string `json:"subject_key"`
	Note       string `json:"note"`
}

type ListFilter struct {
	// Key is matched exactly after trimming (case-sensitive).
	Key string
	// Date is a YYYY-MM-DD prefix match on the check-in timestamp.
	Date string
}

type RecordDTO struct {
	Row        int    `json:"row"`
	Sequence   int    `json:"sequence"`
	SubjectKey string `json:"subject_key"`
	OpenedAt   string `json:"opened_at"`
	ClosedAt   string `json:"closed_at,omitempty"`
	Note       string `json:"note,omitempty"`
	Status     string `json:"status"`
	Approver   string `json:"approver,omitempty"`
}

func toDTO(rec *domain.Record) *RecordDTO {
	dto := &RecordDTO{
		Row:        rec.Row,
		Sequence:   rec.Sequence,
		SubjectKey: rec.SubjectKey,
		OpenedAt:   rec.OpenedAt.Format(domain.TimeLayout),
		Note:       rec.Note,
		Status:     string(rec.EffectiveStatus()),
		Approver:   rec.Approver,
	}
	if !rec.ClosedAt.IsZero() {
		dto.ClosedAt = rec.ClosedAt.Format(domain.TimeLayout)
	}
	return dto
}

// CheckIn opens a new record. A subject with an open record is rejected:
// allowing a second open row would make the newest-open lookup ambiguous.
func (u *Usecase) CheckIn(ctx context.Context, in CheckInInput) (*RecordDTO, error) {
	key := strings.TrimSpace(in.SubjectKey)
	if key == "" {
		return nil, domain.ErrEmptyKey
	}

	existing, err := u.repo.FindOpenRow(ctx, key)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: row %d (checked in %s)",
			domain.ErrOpenRecord, existing.Row, existing.OpenedAt.Format(domain.TimeLayout))
	case !errors.Is(err, domain.ErrNoOpenRecord):
		return nil, err
	}

	rec := &domain.Record{
		SubjectKey: key,
		OpenedAt:   u.now(),
		Status:     domain.StatusPending,
	}
	if _, err := u.repo.Append(ctx, rec); err != nil {
		return nil, err
	}
	u.invalidate(ctx)

	log.WithFields(log.Fields{"subject": key, "row": rec.Row, "seq": rec.Sequence}).Info("checked in")
	return toDTO(rec), nil
}

// CheckOut closes the subject's open record. The two cell writes are not
// atomic, so after closing the row is re-read uncached: a stamped
// checkout with a missing note is reported as a partial write, and the
// record stays closed either way.
func (u *Usecase) CheckOut(ctx context.Context, in CheckOutInput) (*RecordDTO, error) {
	key := strings.TrimSpace(in.SubjectKey)
	if key == "" {
		return nil, domain.ErrEmptyKey
	}
	note := strings.TrimSpace(in.Note)
	if note == "" {
		return nil, domain.ErrEmptyNote
	}

	rec, err := u.repo.FindOpenRow(ctx, key)
	if err != nil {
		return nil, err
	}

	closeErr := u.repo.Close(ctx, rec.Row, u.now(), note)
	if closeErr != nil &&
		(errors.Is(closeErr, domain.ErrEmptyNote) ||
			errors.Is(closeErr, domain.ErrNoOpenRecord) ||
			errors.Is(closeErr, domain.ErrBadCloseTime)) {
		return nil, closeErr
	}
	u.invalidate(ctx)

	after, err := u.repo.Row(ctx, rec.Row)
	if err != nil {
		return nil, fmt.Errorf("verify checkout: %w", err)
	}
	if after.Open() {
		if closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("%w: checkout not visible on row %d", domain.ErrPartialWrite, rec.Row)
	}
	if strings.TrimSpace(after.Note) == "" {
		return nil, fmt.Errorf("%w: checkout stamped but note missing on row %d", domain.ErrPartialWrite, rec.Row)
	}
	if closeErr != nil {
		return nil, closeErr
	}

	log.WithFields(log.Fields{"subject": key, "row": rec.Row}).Info("checked out")
	return toDTO(after), nil
}

// List serves the table view from the snapshot cache when it is warm.
func (u *Usecase) List(ctx context.Context, f ListFilter) ([]RecordDTO, error) {
	recs, err := u.loadCached(ctx)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(f.Key)
	out := make([]RecordDTO, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		if key != "" && strings.TrimSpace(rec.SubjectKey) != key {
			continue
		}
		if f.Date != "" && !strings.HasPrefix(rec.OpenedAt.Format(domain.TimeLayout), f.Date) {
			continue
		}
		out = append(out, *toDTO(rec))
	}
	return out, nil
}

func (u *Usecase) loadCached(ctx context.Context) ([]domain.Record, error) {
	if u.cache != nil {
		if recs, ok := u.cache.Get(ctx); ok {
			return recs, nil
		}
	}
	recs, err := u.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if u.cache != nil {
		u.cache.Set(ctx, recs)
	}
	return recs, nil
}

func (u *Usecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("snapshot invalidation failed")
	}
}
