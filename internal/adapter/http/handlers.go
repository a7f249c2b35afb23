package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	store   string
	started time.Time
}

// NewHandler takes the backing-store mode ("sheet" or "workbook") so
// probes can tell which driver a node is running against.
func NewHandler(store string) *Handler {
	return &Handler{store: store, started: time.Now().UTC()}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"store":  h.store,
		"uptime": time.Since(h.started).Truncate(time.Second).String(),
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}
