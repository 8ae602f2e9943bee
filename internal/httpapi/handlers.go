// Package httpapi implements the admin read API: a healthcheck, the
// Publication read view, and the per-error report. It never creates or
// mutates a row - those paths stay with the external admin interface.
package httpapi

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gopublicist/publicist/internal/domain"
	"github.com/gopublicist/publicist/internal/store"
	"github.com/gopublicist/publicist/pkg/utils/response"
)

const defaultPageSize = 50

// PublicationReader is the read-side surface handlers need from the
// Publication repository.
type PublicationReader interface {
	ListOrdered(ctx context.Context, status string, channelID int64, limit, offset int) ([]*domain.Publication, error)
	ErrorReport(ctx context.Context) ([]store.ErrorAggregate, error)
}

// Handlers holds the repositories the admin read API renders.
type Handlers struct {
	publications PublicationReader
}

func NewHandlers(publications PublicationReader) *Handlers {
	return &Handlers{publications: publications}
}

// Register mounts the admin read API's routes on e.
func (h *Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/api/publications", h.ListPublications)
	e.GET("/api/reports/errors", h.ErrorReport)
}

func (h *Handlers) Healthz(c echo.Context) error {
	return response.Success(c, map[string]string{"status": "ok"})
}

// ListPublications returns publications ordered by (ready_at, planned_at,
// id), optionally narrowed by status and/or channel_id.
func (h *Handlers) ListPublications(c echo.Context) error {
	status := c.QueryParam("status")
	channelID := int64(queryInt(c, "channel_id", 0))
	limit := queryInt(c, "limit", defaultPageSize)
	offset := queryInt(c, "cursor", 0)

	pubs, err := h.publications.ListOrdered(c.Request().Context(), status, channelID, limit, offset)
	if err != nil {
		return err
	}
	return response.Success(c, pubs)
}

// ErrorReport implements the per-last_error aggregate a dashboard would
// render for diagnostics.
func (h *Handlers) ErrorReport(c echo.Context) error {
	report, err := h.publications.ErrorReport(c.Request().Context())
	if err != nil {
		return err
	}
	return response.Success(c, report)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
