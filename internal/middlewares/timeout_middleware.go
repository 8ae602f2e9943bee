package middlewares

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpConfig "github.com/gopublicist/publicist/config/http"
)

func AppRequestTimeOut(cfg *httpConfig.HttpConfig) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	})
}
