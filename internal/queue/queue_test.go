package queue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpConfig "github.com/gopublicist/publicist/config/http"
	workerConfig "github.com/gopublicist/publicist/config/worker"
	"github.com/gopublicist/publicist/internal/audit"
	"github.com/gopublicist/publicist/internal/domain"
	"github.com/gopublicist/publicist/internal/messaging"
	"github.com/gopublicist/publicist/internal/store"
	"github.com/gopublicist/publicist/pkg/testutil"
)

func testWorkerConfig() workerConfig.WorkerConfig {
	return workerConfig.WorkerConfig{
		MaxAttempts:           3,
		DefaultRetryMinutes:   30,
		WorkerIntervalSeconds: 20,
		ProcessingTTLSeconds:  900,
		BatchSize:             10,
	}
}

// fixedFactory routes every channel token to the same httptest server,
// regardless of the credential token supplied.
func fixedFactory(serverURL string) ClientFactory {
	return func(token string) *messaging.Client {
		client := messaging.New(httpConfig.ClientConfig{TimeoutSeconds: 5}, token)
		return client.WithBaseURL(serverURL)
	}
}

type harness struct {
	channels *store.ChannelRepository
	posts    *store.PostRepository
	pubs     *store.PublicationRepository
	auditW   *audit.Writer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	return &harness{
		channels: store.NewChannelRepository(db),
		posts:    store.NewPostRepository(db),
		pubs:     store.NewPublicationRepository(db),
		auditW:   audit.NewWriter(db),
	}
}

func (h *harness) seedChannelAndPost(t *testing.T) (*domain.Channel, *domain.Post) {
	t.Helper()
	ctx := context.Background()
	ch, err := h.channels.Create(ctx, &domain.Channel{
		Title:              "News",
		DestinationID:      "@news",
		CredentialToken:    "tok",
		Timezone:           domain.DefaultTimezone,
		DailyTime:          "10:00",
		AllowedWindowStart: "08:00",
		AllowedWindowEnd:   "22:00",
	})
	require.NoError(t, err)
	post, err := h.posts.Create(ctx, &domain.Post{
		ChannelID: ch.ID,
		Title:     "t",
		BodyHTML:  "body",
		Status:    domain.PostStatusScheduled,
	})
	require.NoError(t, err)
	return ch, post
}

func TestWorker_ProcessClaimed_SuccessMarksSentAndPost(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": map[string]interface{}{"message_id": 99}})
	}))
	defer server.Close()

	ctx := context.Background()
	_, post := h.seedChannelAndPost(t)
	now := time.Now().UTC().Add(-time.Minute)
	pub, err := h.pubs.CreateForPost(ctx, post.ID, now, now)
	require.NoError(t, err)

	w := New(testWorkerConfig(), h.pubs, h.posts, h.channels, h.auditW, fixedFactory(server.URL), "worker-test")
	ok, err := h.pubs.Claim(ctx, pub.ID, "worker-test")
	require.NoError(t, err)
	require.True(t, ok)

	w.processClaimed(ctx, pub.ID)

	reloaded, err := h.pubs.FindByID(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicationSent, reloaded.Status)
	require.NotNil(t, reloaded.MessageID)
	assert.Equal(t, "99", *reloaded.MessageID)

	reloadedPost, err := h.posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusSent, reloadedPost.Status)
}

func TestWorker_ProcessClaimed_NonRetryableFailureMarksFailed(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "description": "Bad Request: chat not found"})
	}))
	defer server.Close()

	ctx := context.Background()
	_, post := h.seedChannelAndPost(t)
	now := time.Now().UTC().Add(-time.Minute)
	pub, err := h.pubs.CreateForPost(ctx, post.ID, now, now)
	require.NoError(t, err)

	w := New(testWorkerConfig(), h.pubs, h.posts, h.channels, h.auditW, fixedFactory(server.URL), "worker-test")
	ok, err := h.pubs.Claim(ctx, pub.ID, "worker-test")
	require.NoError(t, err)
	require.True(t, ok)

	w.processClaimed(ctx, pub.ID)

	reloaded, err := h.pubs.FindByID(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicationFailed, reloaded.Status)
	require.NotNil(t, reloaded.LastError)

	reloadedPost, err := h.posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusFailed, reloadedPost.Status)
}

func TestWorker_ProcessClaimed_RetryableFailureSchedulesRetry(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": false, "description": "Too Many Requests: retry after 30",
			"parameters": map[string]interface{}{"retry_after": 30},
		})
	}))
	defer server.Close()

	ctx := context.Background()
	_, post := h.seedChannelAndPost(t)
	now := time.Now().UTC().Add(-time.Minute)
	pub, err := h.pubs.CreateForPost(ctx, post.ID, now, now)
	require.NoError(t, err)

	cfg := testWorkerConfig()
	cfg.MaxAttempts = 5
	w := New(cfg, h.pubs, h.posts, h.channels, h.auditW, fixedFactory(server.URL), "worker-test")
	ok, err := h.pubs.Claim(ctx, pub.ID, "worker-test")
	require.NoError(t, err)
	require.True(t, ok)

	before := time.Now().UTC()
	w.processClaimed(ctx, pub.ID)

	reloaded, err := h.pubs.FindByID(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicationRetry, reloaded.Status)
	assert.Equal(t, 1, reloaded.Attempts)
	assert.True(t, reloaded.ReadyAt.After(before.Add(29*time.Second)))
	assert.Nil(t, reloaded.LockedAt)
}

func TestWorker_ProcessClaimed_IdempotentCompletionSkipsResend(t *testing.T) {
	h := newHarness(t)
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": map[string]interface{}{"message_id": 1}})
	}))
	defer server.Close()

	ctx := context.Background()
	_, post := h.seedChannelAndPost(t)
	now := time.Now().UTC().Add(-time.Minute)
	pub, err := h.pubs.CreateForPost(ctx, post.ID, now, now)
	require.NoError(t, err)

	w := New(testWorkerConfig(), h.pubs, h.posts, h.channels, h.auditW, fixedFactory(server.URL), "worker-test")
	ok, err := h.pubs.Claim(ctx, pub.ID, "worker-test")
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate a crash between the send and the status commit: message_id
	// is set but the row is still "processing" from the Claim above.
	_, err = h.pubs.DB().NewUpdate().
		Model((*domain.Publication)(nil)).
		Set("message_id = ?", "already-sent").
		Where("id = ?", pub.ID).
		Exec(ctx)
	require.NoError(t, err)
	reloaded, err := h.pubs.FindByID(ctx, pub.ID)
	require.NoError(t, err)
	require.Equal(t, "already-sent", *reloaded.MessageID)

	w.processClaimed(ctx, pub.ID)
	assert.Equal(t, 0, calls, "idempotent completion must not re-send")

	reloadedPost, err := h.posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusSent, reloadedPost.Status)
}

func TestWorker_Iterate_RecoversStuckLeasesBeforeSelecting(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": map[string]interface{}{"message_id": 1}})
	}))
	defer server.Close()

	ctx := context.Background()
	_, post := h.seedChannelAndPost(t)
	now := time.Now().UTC().Add(-time.Minute)
	pub, err := h.pubs.CreateForPost(ctx, post.ID, now, now)
	require.NoError(t, err)
	ok, err := h.pubs.Claim(ctx, pub.ID, "stale-worker")
	require.NoError(t, err)
	require.True(t, ok)

	cfg := testWorkerConfig()
	cfg.ProcessingTTLSeconds = 0 // everything claimed looks stale immediately
	w := New(cfg, h.pubs, h.posts, h.channels, h.auditW, fixedFactory(server.URL), "worker-test")

	require.NoError(t, w.iterate(ctx))

	reloaded, err := h.pubs.FindByID(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicationSent, reloaded.Status)
}
