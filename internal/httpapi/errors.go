package httpapi

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/pkg/logger"
	"github.com/gopublicist/publicist/pkg/utils/response"
)

// handler is one link of the error-handling chain. Handle returns nil once
// it has written a response, or the error unchanged to pass it to the next
// handler.
type handler interface {
	Handle(err error, c echo.Context) error
}

// chain runs each handler in order, stopping as soon as one of them writes
// a response (signalled by returning nil).
type chain struct {
	handlers []handler
}

func newChain(handlers ...handler) *chain {
	return &chain{handlers: handlers}
}

func (c *chain) EchoHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}
	for _, h := range c.handlers {
		if remaining := h.Handle(err, ctx); remaining == nil {
			return
		}
	}
}

// oopsHandler maps internal/apperrors codes to HTTP status codes.
type oopsHandler struct{}

func (oopsHandler) Handle(err error, c echo.Context) error {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return err
	}
	logger.Errorf("request error: %v", err)
	return response.Error(c, mapCodeToHTTP(apperrors.Code(oopsErr)), err)
}

func mapCodeToHTTP(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeValidation, apperrors.CodeBlacklisted:
		return http.StatusBadRequest
	case apperrors.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// bunHandler maps plain database/sql sentinel errors that escape the store
// layer without having gone through an apperrors builder.
type bunHandler struct{}

func (bunHandler) Handle(err error, c echo.Context) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return response.Error(c, http.StatusNotFound, err)
	case errors.Is(err, sql.ErrTxDone):
		return response.Error(c, http.StatusInternalServerError, err)
	}
	return err
}

// echoHandler maps echo's own HTTP errors (404 route not found, method not
// allowed, bind failures).
type echoHandler struct{}

func (echoHandler) Handle(err error, c echo.Context) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return response.Base(c, he.Code, http.StatusText(he.Code), nil, err)
	}
	return err
}

// genericHandler is the chain's fallback: anything still unhandled becomes
// a 500.
type genericHandler struct{}

func (genericHandler) Handle(err error, c echo.Context) error {
	logger.Errorf("unclassified error: %v", err)
	return response.Error(c, http.StatusInternalServerError, err)
}

// Setup installs the chained error handler on e.
func Setup(e *echo.Echo) {
	e.HTTPErrorHandler = newChain(
		oopsHandler{},
		bunHandler{},
		echoHandler{},
		genericHandler{},
	).EchoHandler
}
