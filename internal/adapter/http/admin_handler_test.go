package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"worklog-backend/internal/adapter/middleware"
	domain "worklog-backend/internal/domain/worklog"
	"worklog-backend/internal/testutil/worklogmock"
	ucapproval "worklog-backend/internal/usecase/approval"
)

func newSessionStore(t *testing.T) *middleware.Store {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return middleware.NewStore(rdb, time.Hour)
}

var testCreds = ucapproval.Credentials{Username: "admin", Password: "secret"}

func TestLogin_IssuesSession(t *testing.T) {
	e := newEchoWithValidator()
	sessions := newSessionStore(t)
	h := NewAdminHandler(ucapproval.NewUsecase(&worklogmock.Log{}, nil, testCreds), sessions)

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/admin/login",
		map[string]string{"username": "admin", "password": "secret"})
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp["actor_id"] != "admin" {
		t.Fatalf("actor_id = %q", resp["actor_id"])
	}
	sess, err := sessions.Get(context.Background(), resp["token"])
	if err != nil {
		t.Fatalf("issued token not usable: %v", err)
	}
	if !sess.Authenticated || sess.ActorID != "admin" {
		t.Fatalf("session = %+v", sess)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	e := newEchoWithValidator()
	h := NewAdminHandler(ucapproval.NewUsecase(&worklogmock.Log{}, nil, testCreds), newSessionStore(t))

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/admin/login",
		map[string]string{"username": "admin", "password": "wrong"})
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "BAD_CREDENTIALS" {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestVerdict_StampsActorFromSession(t *testing.T) {
	e := newEchoWithValidator()
	sessions := newSessionStore(t)
	token, err := sessions.Create(context.Background(), "admin")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	stamped := domain.Record{Row: 3, SubjectKey: "a@x.com", Status: domain.StatusApproved}
	repo := &worklogmock.Log{
		ApproveFn: func(ctx context.Context, row int, actorID string, status domain.Status, now time.Time) error {
			stamped.Approver = actorID + " (" + now.Format(domain.TimeLayout) + ")"
			return nil
		},
		RowFn: func(ctx context.Context, row int) (*domain.Record, error) {
			r := stamped
			return &r, nil
		},
	}
	h := NewAdminHandler(ucapproval.NewUsecase(repo, nil, testCreds), sessions)

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/admin/worklogs/3/approve",
		map[string]string{"verdict": "approved"})
	c.SetParamNames("row")
	c.SetParamValues("3")
	c.Request().Header.Set(middleware.TokenHeader, token)

	// run through the gate so the handler sees the session
	if err := middleware.RequireSession(sessions)(h.Verdict)(c); err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var dto ucapproval.VerdictDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.Status != "approved" || !strings.HasPrefix(dto.Approver, "admin (") {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestVerdict_WithoutSession_401(t *testing.T) {
	e := newEchoWithValidator()
	sessions := newSessionStore(t)
	h := NewAdminHandler(ucapproval.NewUsecase(&worklogmock.Log{}, nil, testCreds), sessions)

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/admin/worklogs/3/approve",
		map[string]string{"verdict": "approved"})
	c.SetParamNames("row")
	c.SetParamValues("3")

	if err := middleware.RequireSession(sessions)(h.Verdict)(c); err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestVerdict_UnknownValue_422(t *testing.T) {
	e := newEchoWithValidator()
	h := NewAdminHandler(ucapproval.NewUsecase(&worklogmock.Log{}, nil, testCreds), newSessionStore(t))

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/admin/worklogs/3/approve",
		map[string]string{"verdict": "maybe"})
	c.SetParamNames("row")
	c.SetParamValues("3")

	if err := h.Verdict(c); err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !hasFieldDetail(resp.Details, "Verdict", "one of") {
		t.Fatalf("details = %+v", resp.Details)
	}
}

func TestVerdict_RowNotFound_404(t *testing.T) {
	e := newEchoWithValidator()
	sessions := newSessionStore(t)
	token, err := sessions.Create(context.Background(), "admin")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	repo := &worklogmock.Log{
		ApproveFn: func(ctx context.Context, row int, actorID string, status domain.Status, now time.Time) error {
			return domain.ErrRowNotFound
		},
	}
	h := NewAdminHandler(ucapproval.NewUsecase(repo, nil, testCreds), sessions)

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/admin/worklogs/99/approve",
		map[string]string{"verdict": "approved"})
	c.SetParamNames("row")
	c.SetParamValues("99")
	c.Request().Header.Set(middleware.TokenHeader, token)

	if err := middleware.RequireSession(sessions)(h.Verdict)(c); err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDelete_NoContent(t *testing.T) {
	e := newEchoWithValidator()
	var deleted int
	repo := &worklogmock.Log{
		DeleteRowFn: func(ctx context.Context, row int) error {
			deleted = row
			return nil
		},
	}
	h := NewAdminHandler(ucapproval.NewUsecase(repo, nil, testCreds), newSessionStore(t))

	req := httptest.NewRequest(stdhttp.MethodDelete, "/admin/worklogs/4", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("row")
	c.SetParamValues("4")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if deleted != 4 {
		t.Fatalf("deleted row = %d, want 4", deleted)
	}
}

func TestDelete_HeaderRow_404(t *testing.T) {
	e := newEchoWithValidator()
	repo := &worklogmock.Log{
		DeleteRowFn: func(ctx context.Context, row int) error { return domain.ErrRowNotFound },
	}
	h := NewAdminHandler(ucapproval.NewUsecase(repo, nil, testCreds), newSessionStore(t))

	req := httptest.NewRequest(stdhttp.MethodDelete, "/admin/worklogs/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("row")
	c.SetParamValues("1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
