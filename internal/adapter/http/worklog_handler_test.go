package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	domain "worklog-backend/internal/domain/worklog"
	"worklog-backend/internal/testutil/worklogmock"
	ucworklog "worklog-backend/internal/usecase/worklog"
)

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	return e
}

func mustJSON(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func jsonCtx(t *testing.T, e *echo.Echo, method, path string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		rd = mustJSON(t, body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func hasFieldDetail(details []FieldError, field, fragment string) bool {
	for _, d := range details {
		if d.Field == field && strings.Contains(d.Message, fragment) {
			return true
		}
	}
	return false
}

var handlerOpenedAt = time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)

func TestCheckIn_Created(t *testing.T) {
	e := newEchoWithValidator()
	uc := ucworklog.NewUsecase(&worklogmock.Log{
		FindOpenRowFn: func(ctx context.Context, key string) (*domain.Record, error) {
			return nil, domain.ErrNoOpenRecord
		},
		AppendFn: func(ctx context.Context, rec *domain.Record) (int, error) {
			rec.Row, rec.Sequence = 2, 1
			return 2, nil
		},
	}, nil)
	h := NewWorklogHandler(uc)

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/worklogs", map[string]string{"subject_key": "a@x.com"})
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var dto ucworklog.RecordDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.SubjectKey != "a@x.com" || dto.Sequence != 1 {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestCheckIn_Conflict_WhenAlreadyOpen(t *testing.T) {
	e := newEchoWithValidator()
	uc := ucworklog.NewUsecase(&worklogmock.Log{
		FindOpenRowFn: func(ctx context.Context, key string) (*domain.Record, error) {
			return &domain.Record{Row: 4, SubjectKey: key, OpenedAt: handlerOpenedAt}, nil
		},
	}, nil)
	h := NewWorklogHandler(uc)

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/worklogs", map[string]string{"subject_key": "a@x.com"})
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "OPEN_RECORD_EXISTS" {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestCheckIn_BlankKey_RejectedByValidator(t *testing.T) {
	e := newEchoWithValidator()
	h := NewWorklogHandler(ucworklog.NewUsecase(&worklogmock.Log{}, nil))

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/worklogs", map[string]string{"subject_key": "   "})
	if err := h.CheckIn(c); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !hasFieldDetail(resp.Details, "SubjectKey", "blank") {
		t.Fatalf("details = %+v", resp.Details)
	}
}

func TestCheckOut_EmptyNote_422(t *testing.T) {
	e := newEchoWithValidator()
	h := NewWorklogHandler(ucworklog.NewUsecase(&worklogmock.Log{}, nil))

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/worklogs/checkout",
		map[string]string{"subject_key": "a@x.com", "note": " "})
	if err := h.CheckOut(c); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestCheckOut_NoOpenRecord_404(t *testing.T) {
	e := newEchoWithValidator()
	uc := ucworklog.NewUsecase(&worklogmock.Log{
		FindOpenRowFn: func(ctx context.Context, key string) (*domain.Record, error) {
			return nil, domain.ErrNoOpenRecord
		},
	}, nil)
	h := NewWorklogHandler(uc)

	c, rec := jsonCtx(t, e, stdhttp.MethodPost, "/worklogs/checkout",
		map[string]string{"subject_key": "a@x.com", "note": "done"})
	if err := h.CheckOut(c); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != "NOT_FOUND" {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestList_WithDateFilter(t *testing.T) {
	e := newEchoWithValidator()
	uc := ucworklog.NewUsecase(&worklogmock.Log{
		LoadAllFn: func(ctx context.Context) ([]domain.Record, error) {
			return []domain.Record{
				{Row: 2, Sequence: 1, SubjectKey: "a@x.com", OpenedAt: handlerOpenedAt},
				{Row: 3, Sequence: 2, SubjectKey: "b@x.com", OpenedAt: handlerOpenedAt.AddDate(0, 0, 1)},
			}, nil
		},
	}, nil)
	h := NewWorklogHandler(uc)

	req := httptest.NewRequest(stdhttp.MethodGet, "/worklogs?date=2025-11-04", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var dtos []ucworklog.RecordDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dtos); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(dtos) != 1 || dtos[0].SubjectKey != "b@x.com" {
		t.Fatalf("dtos = %+v", dtos)
	}
}

func TestList_BadDateFilter_422(t *testing.T) {
	e := newEchoWithValidator()
	h := NewWorklogHandler(ucworklog.NewUsecase(&worklogmock.Log{}, nil))

	req := httptest.NewRequest(stdhttp.MethodGet, "/worklogs?date=04-11-2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
