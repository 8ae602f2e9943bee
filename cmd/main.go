package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"

	"github.com/gopublicist/publicist/cmd/server"
	"github.com/gopublicist/publicist/config"
	"github.com/gopublicist/publicist/internal/audit"
	"github.com/gopublicist/publicist/internal/httpapi"
	"github.com/gopublicist/publicist/internal/infra"
	"github.com/gopublicist/publicist/internal/middlewares"
	"github.com/gopublicist/publicist/internal/queue"
	"github.com/gopublicist/publicist/internal/store"
	"github.com/gopublicist/publicist/pkg/logger"
)

func main() {
	injector := do.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	logger.Init(cfg.App.Debug, cfg.Log.Pretty)
	logger.Debugf("initialized configuration %+v", *cfg)

	infra.Setup(injector, cfg)

	e := echo.New()
	middlewares.Init(e, &cfg.Http)
	httpapi.Setup(e)
	server.SetupRestRoutes(injector, e)

	for _, route := range e.Routes() {
		if route.Method == "" && route.Path == "" {
			continue
		}
		logger.Debugf("routes mapped: %s %s", route.Method, route.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Worker.DisableScheduler {
		logger.Infof("queue worker pool disabled via DISABLE_SCHEDULER")
	} else {
		clients := do.MustInvoke[queue.ClientFactory](injector)
		publications := do.MustInvoke[*store.PublicationRepository](injector)
		posts := do.MustInvoke[*store.PostRepository](injector)
		channels := do.MustInvoke[*store.ChannelRepository](injector)
		auditWriter := do.MustInvoke[*audit.Writer](injector)

		newWorker := func(workerID string) *queue.Worker {
			return queue.New(cfg.Worker, publications, posts, channels, auditWriter, clients, workerID)
		}
		go queue.StartPool(ctx, workerPoolSize, newWorker)
	}

	go func() {
		address := fmt.Sprintf(":%d", cfg.Http.Port)
		logger.Infof("starting admin http server at %s", address)
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Infof("received shutdown signal...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("error during server shutdown: %v", err)
	}

	logger.Infof("shutting down services...")
	injector.Shutdown()
	logger.Infof("goodbye!")
}

// workerPoolSize is the fixed number of goroutines draining the
// Publication queue; the worker config's batch size tunable controls how
// many rows one goroutine claims per iteration, not how many run.
const workerPoolSize = 2
