package http

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"worklog-backend/internal/usecase/export"

	domain "worklog-backend/internal/domain/worklog"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	repo      domain.Log
	sheetName string
}

// NewExportHandler reads straight from the log: exports are one-shot
// admin actions and should reflect the store, not the listing cache.
func NewExportHandler(repo domain.Log, sheetName string) *ExportHandler {
	return &ExportHandler{repo: repo, sheetName: sheetName}
}

func (h *ExportHandler) CSV(c echo.Context) error {
	recs, err := h.repo.LoadAll(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	var buf bytes.Buffer
	if err := export.CSV(&buf, recs); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "EXPORT_FAILED"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="worklog.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) XLSX(c echo.Context) error {
	recs, err := h.repo.LoadAll(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	buf, err := export.Workbook(h.sheetName, recs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "EXPORT_FAILED"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="worklog.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

type reportReq struct {
	Title  string `json:"title"`
	Images []struct {
		DataB64 string `json:"data_b64" validate:"required"`
		MIME    string `json:"mime"`
		Caption string `json:"caption"`
	} `json:"images" validate:"dive"`
}

// Report renders the printable HTML snapshot. The browser's print
// dialog does the PDF part; this endpoint only produces the document.
func (h *ExportHandler) Report(c echo.Context) error {
	var req reportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	in := export.ReportInput{Title: req.Title, GeneratedAt: time.Now().UTC()}
	for _, img := range req.Images {
		raw, err := base64.StdEncoding.DecodeString(img.DataB64)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation failed",
				Details: []FieldError{{Field: "images.data_b64", Message: "must be valid base64"}},
			})
		}
		in.Images = append(in.Images, export.ReportImage{Data: raw, MIME: img.MIME, Caption: img.Caption})
	}

	recs, err := h.repo.LoadAll(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	in.Records = recs

	out, err := export.HTMLReport(in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "EXPORT_FAILED"})
	}
	return c.HTMLBlob(http.StatusOK, out)
}
