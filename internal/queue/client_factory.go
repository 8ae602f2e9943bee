package queue

import (
	httpConfig "github.com/gopublicist/publicist/config/http"
	"github.com/gopublicist/publicist/internal/messaging"
	"github.com/gopublicist/publicist/internal/ratelimit"
)

// NewClientFactory returns a ClientFactory that builds a fresh
// messaging.Client per channel token, sharing one ClientConfig and one
// rate limiter across every channel the worker touches.
func NewClientFactory(cfg httpConfig.ClientConfig, limiter ratelimit.Limiter) ClientFactory {
	return func(token string) *messaging.Client {
		return messaging.New(cfg, token).SetLimiter(limiter)
	}
}
