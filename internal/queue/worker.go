// Package queue implements the Publication state machine and the worker
// loop that drains it: stuck-lease recovery, due-batch selection,
// per-row compare-and-set claim, and dispatch to the Messaging Client.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/internal/audit"
	"github.com/gopublicist/publicist/internal/domain"
	"github.com/gopublicist/publicist/internal/messaging"
	"github.com/gopublicist/publicist/internal/store"
	"github.com/gopublicist/publicist/pkg/logger"

	workerConfig "github.com/gopublicist/publicist/config/worker"
)

// ClientFactory builds a Messaging Client bound to one channel's
// credential token. Channels are cheap to construct per send; the worker
// never holds a pool of them across iterations.
type ClientFactory func(token string) *messaging.Client

// Worker drains the Publication queue. A single process may run multiple
// worker goroutines; cross-process concurrency is resolved entirely by
// the store's compare-and-set claim.
type Worker struct {
	cfg          workerConfig.WorkerConfig
	publications *store.PublicationRepository
	posts        *store.PostRepository
	channels     *store.ChannelRepository
	auditWriter  *audit.Writer
	clients      ClientFactory
	id           string
}

func New(
	cfg workerConfig.WorkerConfig,
	publications *store.PublicationRepository,
	posts *store.PostRepository,
	channels *store.ChannelRepository,
	auditWriter *audit.Writer,
	clients ClientFactory,
	workerID string,
) *Worker {
	return &Worker{
		cfg:          cfg,
		publications: publications,
		posts:        posts,
		channels:     channels,
		auditWriter:  auditWriter,
		clients:      clients,
		id:           workerID,
	}
}

// Run blocks, looping until ctx is canceled. Each iteration recovers
// stuck leases, selects a due batch, claims each candidate, and processes
// the ones this worker wins, then sleeps WORKER_INTERVAL_SECONDS.
func (w *Worker) Run(ctx context.Context) {
	interval := time.Duration(w.cfg.WorkerIntervalSeconds) * time.Second
	logger.Infof("queue: worker %s starting, interval=%s", w.id, interval)

	for {
		select {
		case <-ctx.Done():
			logger.Infof("queue: worker %s stopping", w.id)
			return
		default:
		}

		if err := w.iterate(ctx); err != nil {
			logger.Errorf("queue: worker %s iteration error: %v", w.id, err)
		}

		select {
		case <-ctx.Done():
			logger.Infof("queue: worker %s stopping", w.id)
			return
		case <-time.After(interval):
		}
	}
}

func (w *Worker) iterate(ctx context.Context) error {
	recovered, err := w.publications.RecoverStuckLeases(
		ctx,
		time.Duration(w.cfg.ProcessingTTLSeconds)*time.Second,
		w.cfg.MaxAttempts,
	)
	if err != nil {
		return apperrors.Queue(apperrors.CodeDatabase).Wrap(err)
	}
	if recovered > 0 {
		logger.Warnf("queue: worker %s recovered %d stuck lease(s)", w.id, recovered)
	}

	batch, err := w.publications.SelectDueBatch(ctx, w.cfg.BatchSize, w.cfg.MaxAttempts)
	if err != nil {
		return apperrors.Queue(apperrors.CodeDatabase).Wrap(err)
	}

	for _, pub := range batch {
		claimed, err := w.publications.Claim(ctx, pub.ID, w.id)
		if err != nil {
			logger.Errorf("queue: worker %s claim error for publication %d: %v", w.id, pub.ID, err)
			continue
		}
		if !claimed {
			continue
		}
		w.processClaimed(ctx, pub.ID)
	}
	return nil
}

// processClaimed handles one claimed row end to end: send, mark the
// outcome, and update the parent post's status. Any panic during
// processing is recovered and converted into a retry (or a terminal
// failure once attempts are exhausted) so the worker never leaves a row
// stuck in processing.
func (w *Worker) processClaimed(ctx context.Context, id int64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("queue: worker %s panic processing publication %d: %v", w.id, id, r)
			w.handleUnexpected(ctx, id, fmt.Errorf("panic: %v", r))
		}
	}()

	pub, err := w.publications.FindByID(ctx, id)
	if err != nil {
		logger.Errorf("queue: worker %s reload error for publication %d: %v", w.id, id, err)
		return
	}

	// Idempotent completion: a crash between send-ok and commit in a
	// prior run can leave message_id set on a row still marked processing.
	if pub.MessageID != nil {
		if err := w.complete(ctx, pub, *pub.MessageID); err != nil {
			logger.Errorf("queue: worker %s idempotent completion error for publication %d: %v", w.id, id, err)
		}
		return
	}

	post, err := w.posts.FindByID(ctx, pub.PostID)
	if err != nil {
		w.handleUnexpected(ctx, id, err)
		return
	}
	channel, err := w.channels.FindByID(ctx, post.ChannelID)
	if err != nil {
		w.handleUnexpected(ctx, id, err)
		return
	}

	client := w.clients(channel.CredentialToken)
	chatID := messaging.NormalizeChatID(channel.DestinationID)
	result := client.Deliver(ctx, chatID, post)

	if result.OK {
		if err := w.complete(ctx, pub, result.MessageID); err != nil {
			logger.Errorf("queue: worker %s completion error for publication %d: %v", w.id, id, err)
		}
		return
	}
	w.handleFailure(ctx, pub, post, result)
}

func (w *Worker) complete(ctx context.Context, pub *domain.Publication, messageID string) error {
	if err := w.publications.MarkSent(ctx, pub.ID, messageID); err != nil {
		return err
	}
	if err := w.auditWriter.Log(ctx, domain.EntityPublication, pub.ID, domain.AuditActionSend, map[string]interface{}{
		"message_id": messageID,
	}); err != nil {
		logger.Errorf("queue: worker %s audit log error for publication %d: %v", w.id, pub.ID, err)
	}

	remaining, err := w.publications.CountNonTerminalForPost(ctx, pub.PostID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := w.posts.SetStatus(ctx, w.publications.DB(), pub.PostID, domain.PostStatusSent); err != nil {
			logger.Errorf("queue: worker %s post status update error for post %d: %v", w.id, pub.PostID, err)
		}
	}
	return nil
}

func (w *Worker) handleFailure(ctx context.Context, pub *domain.Publication, post *domain.Post, result messaging.SendResult) {
	attempts := pub.Attempts + 1
	lastError := errorMessage(result.Err)

	if attempts >= w.cfg.MaxAttempts || !result.Retryable {
		if err := w.publications.MarkFailed(ctx, pub.ID, attempts, lastError); err != nil {
			logger.Errorf("queue: worker %s mark-failed error for publication %d: %v", w.id, pub.ID, err)
			return
		}
		if err := w.posts.SetStatus(ctx, w.publications.DB(), post.ID, domain.PostStatusFailed); err != nil {
			logger.Errorf("queue: worker %s post status update error for post %d: %v", w.id, post.ID, err)
		}
		if err := w.auditWriter.Log(ctx, domain.EntityPublication, pub.ID, domain.AuditActionFail, map[string]interface{}{
			"attempts":   attempts,
			"last_error": lastError,
		}); err != nil {
			logger.Errorf("queue: worker %s audit log error for publication %d: %v", w.id, pub.ID, err)
		}
		return
	}

	delaySeconds := w.cfg.DefaultRetryMinutes * 60
	if result.RetryAfterSeconds > delaySeconds {
		delaySeconds = result.RetryAfterSeconds
	}
	readyAt := time.Now().UTC().Add(time.Duration(delaySeconds) * time.Second)

	if err := w.publications.MarkRetry(ctx, pub.ID, attempts, readyAt, lastError); err != nil {
		logger.Errorf("queue: worker %s mark-retry error for publication %d: %v", w.id, pub.ID, err)
		return
	}
	if err := w.auditWriter.Log(ctx, domain.EntityPublication, pub.ID, domain.AuditActionRetry, map[string]interface{}{
		"attempts":      attempts,
		"delay_seconds": delaySeconds,
		"last_error":    lastError,
	}); err != nil {
		logger.Errorf("queue: worker %s audit log error for publication %d: %v", w.id, pub.ID, err)
	}
}

// handleUnexpected clears the lock and retries (or fails once the
// attempt cap is reached) after any exception during processing; it
// never leaves the row in processing.
func (w *Worker) handleUnexpected(ctx context.Context, id int64, cause error) {
	pub, err := w.publications.FindByID(ctx, id)
	if err != nil {
		logger.Errorf("queue: worker %s could not reload publication %d after error: %v", w.id, id, err)
		return
	}
	attempts := pub.Attempts + 1
	lastError := errorMessage(cause)

	if attempts >= w.cfg.MaxAttempts {
		if err := w.publications.MarkFailed(ctx, id, attempts, lastError); err != nil {
			logger.Errorf("queue: worker %s mark-failed error for publication %d: %v", w.id, id, err)
		}
		return
	}
	readyAt := time.Now().UTC().Add(time.Duration(w.cfg.DefaultRetryMinutes) * time.Minute)
	if err := w.publications.MarkRetry(ctx, id, attempts, readyAt, lastError); err != nil {
		logger.Errorf("queue: worker %s mark-retry error for publication %d: %v", w.id, id, err)
	}
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// StartPool launches n worker goroutines sharing one iteration cadence,
// blocking until ctx is canceled and every goroutine has returned.
func StartPool(ctx context.Context, n int, newWorker func(workerID string) *Worker) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		workerID := fmt.Sprintf("worker-%d", i)
		go func(id string) {
			defer wg.Done()
			newWorker(id).Run(ctx)
		}(workerID)
	}
	wg.Wait()
}
