package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	ucworklog "worklog-backend/internal/usecase/worklog"
)

type WorklogHandler struct{ uc *ucworklog.Usecase }

func NewWorklogHandler(uc *ucworklog.Usecase) *WorklogHandler { return &WorklogHandler{uc: uc} }

type checkInReq struct {
	SubjectKey string `json:"subject_key" validate:"required,notblank"`
}

type checkOutReq struct {
	SubjectKey string `json:"subject_key" validate:"required,notblank"`
	Note       string `json:"note"        validate:"required,notblank"`
}

type listQuery struct {
	Key  string `query:"key"`
	Date string `query:"date" validate:"omitempty,datefilter"`
}

func (h *WorklogHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.CheckIn(c.Request().Context(), ucworklog.CheckInInput(req))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *WorklogHandler) CheckOut(c echo.Context) error {
	var req checkOutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.CheckOut(c.Request().Context(), ucworklog.CheckOutInput(req))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *WorklogHandler) List(c echo.Context) error {
	var q listQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}
	if err := c.Validate(&q); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dtos, err := h.uc.List(c.Request().Context(), ucworklog.ListFilter{Key: q.Key, Date: q.Date})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}
