// Package response provides the admin read API's JSON envelope.
package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type body struct {
	Code       int         `json:"code,omitempty"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ServerTime string      `json:"serverTime"`
}

func Base(c echo.Context, httpCode int, message string, data interface{}, err error) error {
	b := body{
		Code:       httpCode,
		Message:    message,
		ServerTime: time.Now().UTC().Format(time.RFC3339),
	}
	if data != nil {
		b.Data = data
	}
	if err != nil {
		b.Error = err.Error()
	}
	return c.JSON(httpCode, b)
}

func Success(c echo.Context, data interface{}) error {
	return Base(c, http.StatusOK, http.StatusText(http.StatusOK), data, nil)
}

func Error(c echo.Context, httpCode int, err error) error {
	return Base(c, httpCode, http.StatusText(httpCode), nil, err)
}
