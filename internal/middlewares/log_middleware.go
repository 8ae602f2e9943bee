package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gopublicist/publicist/pkg/logger"
)

func Logger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogRequestID: true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Log.GetLogger().Info().
				Str("method", c.Request().Method).
				Str("path", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str(echo.HeaderXRequestID, v.RequestID).
				Msg(http.StatusText(v.Status))
			return nil
		},
	})
}
