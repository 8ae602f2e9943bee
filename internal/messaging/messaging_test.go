package messaging

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpConfig "github.com/gopublicist/publicist/config/http"
	"github.com/gopublicist/publicist/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := New(httpConfig.ClientConfig{TimeoutSeconds: 5}, "test-token")
	client.http.SetBaseURL(server.URL)
	return client, server
}

func methodOf(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, "/")
}

// a plain text send against a healthy endpoint succeeds.
func TestSendText_Success(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "sendMessage", methodOf(r))
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(envelope{OK: true, Result: json.RawMessage(`{"message_id":42}`)})
	})
	defer server.Close()

	result := client.SendText(t.Context(), "@channel", "<b>hello</b>", domain.Options{}, nil)
	assert.True(t, result.OK)
	assert.Equal(t, "42", result.MessageID)
}

// a 429 with retry_after is retryable and carries the delay.
func TestSendText_RateLimited(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(envelope{
			OK:          false,
			Description: "Too Many Requests: retry after 5",
			Parameters:  &parameters{RetryAfter: 5},
		})
	})
	defer server.Close()

	result := client.SendText(t.Context(), "@channel", "hi", domain.Options{}, nil)
	assert.False(t, result.OK)
	assert.True(t, result.Retryable)
	assert.Equal(t, 5, result.RetryAfterSeconds)
}

// a 400 rejection is non-retryable.
func TestSendText_NonRetryableRejection(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(envelope{OK: false, Description: "Bad Request: chat not found"})
	})
	defer server.Close()

	result := client.SendText(t.Context(), "@channel", "hi", domain.Options{}, nil)
	assert.False(t, result.OK)
	assert.False(t, result.Retryable)
}

// A bare 5xx with no parsed description is still retryable.
func TestSendText_ServerErrorRetryable(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(envelope{OK: false})
	})
	defer server.Close()

	result := client.SendText(t.Context(), "@channel", "hi", domain.Options{}, nil)
	assert.False(t, result.OK)
	assert.True(t, result.Retryable)
}

// a media group with a keyboard sends the group, then a follow-up
// text message whose id becomes the recorded message id. The follow-up
// carries the fixed "Подробнее:" caption, not the post body again.
func TestDeliver_MediaGroupWithKeyboardWorkaround(t *testing.T) {
	var calls []string
	var followUpText string
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method := methodOf(r)
		calls = append(calls, method)
		w.WriteHeader(http.StatusOK)
		switch method {
		case "sendMediaGroup":
			_ = json.NewEncoder(w).Encode(envelope{OK: true, Result: json.RawMessage(`[{"message_id":1},{"message_id":2}]`)})
		case "sendMessage":
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			followUpText, _ = body["text"].(string)
			_ = json.NewEncoder(w).Encode(envelope{OK: true, Result: json.RawMessage(`{"message_id":3}`)})
		}
	})
	defer server.Close()

	post := &domain.Post{
		BodyHTML: "caption",
		Media: []domain.Media{
			{Type: "photo", URL: "https://example.com/a.jpg"},
			{Type: "photo", URL: "https://example.com/b.jpg"},
		},
		Buttons: []domain.Button{{Text: "Visit", URL: "https://example.com"}},
	}

	result := client.Deliver(t.Context(), "@channel", post)
	require.True(t, result.OK)
	assert.Equal(t, "3", result.MessageID) // follow-up's id, not the group's
	assert.Equal(t, []string{"sendMediaGroup", "sendMessage"}, calls)
	assert.Equal(t, "Подробнее:", followUpText)
}

// When the keyboard follow-up fails after a successful group send, the
// overall delivery is reported failed.
func TestDeliver_MediaGroupKeyboardFollowUpFails(t *testing.T) {
	var followUpText string
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch methodOf(r) {
		case "sendMediaGroup":
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(envelope{OK: true, Result: json.RawMessage(`[{"message_id":1}]`)})
		case "sendMessage":
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			followUpText, _ = body["text"].(string)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(envelope{OK: false})
		}
	})
	defer server.Close()

	post := &domain.Post{
		BodyHTML: "caption",
		Media: []domain.Media{
			{Type: "photo", URL: "https://example.com/a.jpg"},
			{Type: "photo", URL: "https://example.com/b.jpg"},
		},
		Buttons: []domain.Button{{Text: "Visit", URL: "https://example.com"}},
	}

	result := client.Deliver(t.Context(), "@channel", post)
	assert.False(t, result.OK)
	assert.Equal(t, "Подробнее:", followUpText)
}

// A media group with no keyboard never issues the follow-up text send.
func TestDeliver_MediaGroupWithoutKeyboard(t *testing.T) {
	var calls []string
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, methodOf(r))
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(envelope{OK: true, Result: json.RawMessage(`[{"message_id":7}]`)})
	})
	defer server.Close()

	post := &domain.Post{
		BodyHTML: "caption",
		Media: []domain.Media{
			{Type: "photo", URL: "https://example.com/a.jpg"},
			{Type: "video", URL: "https://example.com/b.mp4"},
		},
	}

	result := client.Deliver(t.Context(), "@channel", post)
	require.True(t, result.OK)
	assert.Equal(t, "7", result.MessageID)
	assert.Equal(t, []string{"sendMediaGroup"}, calls)
}

// normalize_chat_id is idempotent.
func TestNormalizeChatID_Idempotent(t *testing.T) {
	cases := []string{
		"@channelname",
		"https://t.me/channelname",
		"-1001234567890",
		"channelname",
		"t.me/another_one",
	}
	for _, raw := range cases {
		once := NormalizeChatID(raw)
		twice := NormalizeChatID(once)
		assert.Equal(t, once, twice, "not idempotent for %q", raw)
	}
}

func TestNormalizeMediaType_Aliases(t *testing.T) {
	assert.Equal(t, "photo", NormalizeMediaType("image"))
	assert.Equal(t, "photo", NormalizeMediaType("img"))
	assert.Equal(t, "document", NormalizeMediaType("gif"))
	assert.Equal(t, "document", NormalizeMediaType("file"))
	assert.Equal(t, "video", NormalizeMediaType("video"))
	assert.Equal(t, "photo", NormalizeMediaType("unknown-kind"))
}

func TestBuildInlineKeyboard_DropsIncompleteEntries(t *testing.T) {
	kb := BuildInlineKeyboard([]InlineKeyboardButton{
		{Text: "", URL: "https://example.com"},
		{Text: "ok", URL: ""},
		{Text: "Visit", URL: "https://example.com"},
	})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboardRows, 1)
	assert.Equal(t, "Visit", kb.InlineKeyboardRows[0][0].Text)
}

func TestBuildInlineKeyboard_EmptyYieldsNil(t *testing.T) {
	assert.Nil(t, BuildInlineKeyboard(nil))
	assert.Nil(t, BuildInlineKeyboard([]InlineKeyboardButton{{Text: "", URL: ""}}))
}
