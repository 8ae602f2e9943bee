package server

import (
	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"

	"github.com/gopublicist/publicist/internal/httpapi"
	"github.com/gopublicist/publicist/internal/store"
)

// SetupRestRoutes mounts the admin read API: healthcheck, the
// Publication read view, and the per-error report. Creating channels,
// authoring posts, and CSV upload remain the external admin interface's
// responsibility.
func SetupRestRoutes(injector do.Injector, e *echo.Echo) {
	publications := do.MustInvoke[*store.PublicationRepository](injector)
	httpapi.NewHandlers(publications).Register(e)
}
