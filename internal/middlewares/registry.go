package middlewares

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpConfig "github.com/gopublicist/publicist/config/http"
	"github.com/gopublicist/publicist/pkg/logger"
)

// Init wires the admin read API's middleware stack. The API is read-only
// and unauthenticated by design, so there is no auth or request-body
// validation layer here - just request id, logging, recovery, timeout
// and CORS.
func Init(e *echo.Echo, cfg *httpConfig.HttpConfig) {
	e.Use(AppRequestID())
	e.Use(Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(AppRequestTimeOut(cfg))
	e.Use(Cors(cfg))

	logger.Infof("admin API middleware stack initialized")
}
