// Package infra wires the scheduling core's concrete dependencies —
// durable store, rate limiter, validator, scheduler, and queue worker
// factory — into the samber/do/v2 injector cmd/main.go drives.
package infra

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/uptrace/bun"

	"github.com/gopublicist/publicist/config"
	"github.com/gopublicist/publicist/internal/audit"
	"github.com/gopublicist/publicist/internal/contentvalidator"
	"github.com/gopublicist/publicist/internal/csvimport"
	"github.com/gopublicist/publicist/internal/infra/database"
	"github.com/gopublicist/publicist/internal/queue"
	"github.com/gopublicist/publicist/internal/ratelimit"
	"github.com/gopublicist/publicist/internal/scheduler"
	"github.com/gopublicist/publicist/internal/store"
	"github.com/gopublicist/publicist/pkg/logger"
)

// Setup registers every provider the scheduling core needs. Providers are
// resolved lazily by do.Invoke/do.MustInvoke at first use, not eagerly
// here.
func Setup(injector do.Injector, cfg *config.Config) {
	do.ProvideValue(injector, cfg)

	do.Provide(injector, provideDatabase(cfg))
	do.Provide(injector, provideRateLimiter(cfg))

	do.Provide(injector, provideChannelRepository)
	do.Provide(injector, providePostRepository)
	do.Provide(injector, providePublicationRepository)
	do.Provide(injector, provideBlacklistRuleRepository)
	do.Provide(injector, provideAuditLogRepository)

	do.Provide(injector, provideContentValidator)
	do.Provide(injector, provideScheduler)
	do.Provide(injector, provideAuditWriter)

	do.Provide(injector, provideClientFactory(cfg))
	do.Provide(injector, provideCSVImporter)
}

func provideDatabase(cfg *config.Config) func(do.Injector) (*bun.DB, error) {
	return func(i do.Injector) (*bun.DB, error) {
		db, err := database.NewBunClient(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
		logger.Debugf("infra: database initialized, driver=%s", cfg.Database.Driver)
		return db, nil
	}
}

func provideRateLimiter(cfg *config.Config) func(do.Injector) (ratelimit.Limiter, error) {
	return func(i do.Injector) (ratelimit.Limiter, error) {
		limiter := ratelimit.New(cfg.Redis)
		logger.Debugf("infra: rate limiter initialized")
		return limiter, nil
	}
}

func provideChannelRepository(i do.Injector) (*store.ChannelRepository, error) {
	db, err := do.Invoke[*bun.DB](i)
	if err != nil {
		return nil, err
	}
	return store.NewChannelRepository(db), nil
}

func providePostRepository(i do.Injector) (*store.PostRepository, error) {
	db, err := do.Invoke[*bun.DB](i)
	if err != nil {
		return nil, err
	}
	return store.NewPostRepository(db), nil
}

func providePublicationRepository(i do.Injector) (*store.PublicationRepository, error) {
	db, err := do.Invoke[*bun.DB](i)
	if err != nil {
		return nil, err
	}
	return store.NewPublicationRepository(db), nil
}

func provideBlacklistRuleRepository(i do.Injector) (*store.BlacklistRuleRepository, error) {
	db, err := do.Invoke[*bun.DB](i)
	if err != nil {
		return nil, err
	}
	return store.NewBlacklistRuleRepository(db), nil
}

func provideAuditLogRepository(i do.Injector) (*store.AuditLogRepository, error) {
	db, err := do.Invoke[*bun.DB](i)
	if err != nil {
		return nil, err
	}
	return store.NewAuditLogRepository(db), nil
}

func provideContentValidator(i do.Injector) (*contentvalidator.Validator, error) {
	rules, err := do.Invoke[*store.BlacklistRuleRepository](i)
	if err != nil {
		return nil, err
	}
	return contentvalidator.New(rules), nil
}

func provideScheduler(i do.Injector) (*scheduler.Scheduler, error) {
	pubs, err := do.Invoke[*store.PublicationRepository](i)
	if err != nil {
		return nil, err
	}
	return scheduler.New(pubs), nil
}

func provideAuditWriter(i do.Injector) (*audit.Writer, error) {
	db, err := do.Invoke[*bun.DB](i)
	if err != nil {
		return nil, err
	}
	return audit.NewWriter(db), nil
}

func provideClientFactory(cfg *config.Config) func(do.Injector) (queue.ClientFactory, error) {
	return func(i do.Injector) (queue.ClientFactory, error) {
		limiter, err := do.Invoke[ratelimit.Limiter](i)
		if err != nil {
			return nil, err
		}
		return queue.NewClientFactory(cfg.HttpClient, limiter), nil
	}
}

func provideCSVImporter(i do.Injector) (*csvimport.Importer, error) {
	channels, err := do.Invoke[*store.ChannelRepository](i)
	if err != nil {
		return nil, err
	}
	posts, err := do.Invoke[*store.PostRepository](i)
	if err != nil {
		return nil, err
	}
	pubs, err := do.Invoke[*store.PublicationRepository](i)
	if err != nil {
		return nil, err
	}
	validator, err := do.Invoke[*contentvalidator.Validator](i)
	if err != nil {
		return nil, err
	}
	sched, err := do.Invoke[*scheduler.Scheduler](i)
	if err != nil {
		return nil, err
	}
	return csvimport.New(channels, posts, pubs, validator, sched), nil
}
