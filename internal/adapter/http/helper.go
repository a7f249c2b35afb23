package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	ucapproval "worklog-backend/internal/usecase/approval"

	domain "worklog-backend/internal/domain/worklog"
)

// domainError maps domain failures onto stable error codes and HTTP
// statuses. Anything unrecognized is treated as a backing-store failure
// the client may retry.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyKey):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "EMPTY_SUBJECT_KEY"})
	case errors.Is(err, domain.ErrEmptyNote):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "EMPTY_NOTE"})
	case errors.Is(err, domain.ErrBadCloseTime):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "BAD_CLOSE_TIME"})
	case errors.Is(err, domain.ErrOpenRecord):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "OPEN_RECORD_EXISTS"})
	case errors.Is(err, domain.ErrNoOpenRecord), errors.Is(err, domain.ErrRowNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "NOT_FOUND"})
	case errors.Is(err, ucapproval.ErrBadVerdict):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "BAD_VERDICT"})
	case errors.Is(err, ucapproval.ErrBadCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "BAD_CREDENTIALS"})
	case errors.Is(err, domain.ErrPartialWrite):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "PARTIAL_WRITE"})
	case errors.Is(err, domain.ErrBadHeader):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "HEADER_MISMATCH"})
	default:
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "STORE_UNAVAILABLE"})
	}
}
