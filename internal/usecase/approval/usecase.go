package approval

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	domain "worklog-backend/internal/domain/worklog"
)

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrBadVerdict     = errors.New("verdict must be approved or rejected")
)

// Credentials is the privileged surface's plaintext login pair. There is
// deliberately no real authentication here, only the gate the admin
// dashboard has always had.
type Credentials struct {
	Username string
	Password string
}

type Usecase struct {
	repo  domain.Log
	cache domain.SnapshotCache
	creds Credentials
	now   func() time.Time
}

func NewUsecase(r domain.Log, c domain.SnapshotCache, creds Credentials) *Usecase {
	return &Usecase{repo: r, cache: c, creds: creds, now: func() time.Time { return time.Now().UTC() }}
}

// Authenticate compares the plaintext pair and returns the actor id used
// for approval stamps.
func (u *Usecase) Authenticate(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(u.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(u.creds.Password)) == 1
	if !userOK || !passOK {
		return "", ErrBadCredentials
	}
	return username, nil
}

type VerdictInput struct {
	Row     int
	ActorID string
	Verdict string // "approved" or "rejected"
}

type VerdictDTO struct {
	Row      int    `json:"row"`
	Status   string `json:"status"`
	Approver string `json:"approver"`
}

// Decide stamps the verdict and "actor (timestamp)" on the row, then
// re-reads it to confirm both cells landed. Re-deciding a row overwrites
// the previous verdict; approval is independent of the open/closed axis.
func (u *Usecase) Decide(ctx context.Context, in VerdictInput) (*VerdictDTO, error) {
	status, err := parseVerdict(in.Verdict)
	if err != nil {
		return nil, err
	}
	actor := strings.TrimSpace(in.ActorID)
	if actor == "" {
		return nil, ErrBadCredentials
	}

	decideErr := u.repo.Approve(ctx, in.Row, actor, status, u.now())
	if decideErr != nil && errors.Is(decideErr, domain.ErrRowNotFound) {
		return nil, decideErr
	}
	u.invalidate(ctx)

	after, err := u.repo.Row(ctx, in.Row)
	if err != nil {
		return nil, fmt.Errorf("verify verdict: %w", err)
	}
	if after.Status != status || !strings.HasPrefix(after.Approver, actor+" (") {
		if decideErr != nil {
			return nil, decideErr
		}
		return nil, fmt.Errorf("%w: verdict not fully visible on row %d", domain.ErrPartialWrite, in.Row)
	}
	if decideErr != nil {
		return nil, decideErr
	}

	log.WithFields(log.Fields{"row": in.Row, "actor": actor, "status": status}).Info("verdict recorded")
	return &VerdictDTO{Row: in.Row, Status: string(after.Status), Approver: after.Approver}, nil
}

// Delete removes a row outright. Admin override only; the primary flow
// never deletes.
func (u *Usecase) Delete(ctx context.Context, row int) error {
	if err := u.repo.DeleteRow(ctx, row); err != nil {
		return err
	}
	u.invalidate(ctx)
	log.WithField("row", row).Warn("row deleted by admin")
	return nil
}

func parseVerdict(v string) (domain.Status, error) {
	switch domain.Status(strings.TrimSpace(v)) {
	case domain.StatusApproved:
		return domain.StatusApproved, nil
	case domain.StatusRejected:
		return domain.StatusRejected, nil
	default:
		return "", ErrBadVerdict
	}
}

func (u *Usecase) invalidate(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("snapshot invalidation failed")
	}
}
