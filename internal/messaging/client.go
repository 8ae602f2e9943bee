// Package messaging implements the remote send protocol: a thin
// token-authenticated JSON-over-HTTP client plus the normalization and
// dispatch rules layered on top of it.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/internal/ratelimit"
	httpConfig "github.com/gopublicist/publicist/config/http"
)

const baseURLTemplate = "https://api.telegram.org/bot%s"

// Client is the remote messaging endpoint bound to a single channel's
// credential token. limiter is consulted before every remote call so a
// worker backs off proactively rather than relying solely on reactive
// retry_after handling; it is nil (no proactive throttling) unless
// SetLimiter is called.
type Client struct {
	http    *resty.Client
	limiter ratelimit.Limiter
}

// New builds a Client for one channel's bot token, applying cfg's fixed
// request timeout (default 20s per the wire protocol).
func New(cfg httpConfig.ClientConfig, token string) *Client {
	client := resty.New()
	client.SetBaseURL(fmt.Sprintf(baseURLTemplate, token))
	client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	client.SetHeader("Content-Type", "application/json")
	if cfg.LoggerEnabled {
		client.Logger()
	}
	return &Client{http: client}
}

// SetLimiter attaches a per-chat rate limiter consulted before each
// remote call. Returns c for chaining at construction time.
func (c *Client) SetLimiter(limiter ratelimit.Limiter) *Client {
	c.limiter = limiter
	return c
}

// WithBaseURL overrides the resty client's base URL in place and returns
// the same Client, for tests that point at an httptest server instead of
// the real endpoint.
func (c *Client) WithBaseURL(url string) *Client {
	c.http.SetBaseURL(url)
	return c
}

func (c *Client) call(ctx context.Context, method string, payload map[string]interface{}) (envelope, int, error) {
	if c.limiter != nil {
		chatKey, _ := payload["chat_id"].(string)
		if chatKey != "" {
			if err := c.limiter.Wait(ctx, chatKey); err != nil {
				return envelope{}, 0, classifyTransport(err)
			}
		}
	}

	var env envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&env).
		Post(method)
	if err != nil {
		return envelope{}, 0, classifyTransport(err)
	}
	return env, resp.StatusCode(), nil
}

func resultOf(raw json.RawMessage) (SendResult, bool) {
	var mr messageResult
	if err := json.Unmarshal(raw, &mr); err != nil || mr.MessageID == 0 {
		return SendResult{}, false
	}
	return SendResult{OK: true, MessageID: fmt.Sprintf("%d", mr.MessageID)}, true
}

func (c *Client) send(ctx context.Context, method string, payload map[string]interface{}) SendResult {
	env, status, err := c.call(ctx, method, payload)
	if err != nil {
		return SendResult{OK: false, Err: err, Retryable: true}
	}
	if !env.OK {
		retryable, classifyErr := classifyHTTP(status, env)
		retryAfter := 0
		if env.Parameters != nil {
			retryAfter = env.Parameters.RetryAfter
		}
		return SendResult{OK: false, Err: classifyErr, Retryable: retryable, RetryAfterSeconds: retryAfter}
	}
	if res, ok := resultOf(env.Result); ok {
		return res
	}
	return SendResult{OK: true}
}

func withOptions(payload map[string]interface{}, chatID, text string, options optionsReader, keyboard *InlineKeyboard) map[string]interface{} {
	payload["chat_id"] = chatID
	if text != "" {
		payload["text"] = text
		payload["parse_mode"] = "HTML"
	}
	if options != nil {
		if options.DisableNotification() {
			payload["disable_notification"] = true
		}
		if options.ProtectContent() {
			payload["protect_content"] = true
		}
		if options.DisablePreview() {
			payload["link_preview_options"] = map[string]interface{}{"is_disabled": true}
		}
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	return payload
}

// optionsReader is the subset of domain.Options the client needs, kept
// local so this package doesn't import internal/domain for a handful of
// boolean flags.
type optionsReader interface {
	DisableNotification() bool
	ProtectContent() bool
	DisablePreview() bool
	Pin() bool
}

// SendText implements send_text: POST sendMessage.
func (c *Client) SendText(ctx context.Context, chatID, bodyHTML string, options optionsReader, keyboard *InlineKeyboard) SendResult {
	payload := withOptions(map[string]interface{}{}, chatID, bodyHTML, options, keyboard)
	return c.send(ctx, "sendMessage", payload)
}

var mediaMethod = map[string]string{
	"photo":    "sendPhoto",
	"video":    "sendVideo",
	"document": "sendDocument",
}

var mediaFileField = map[string]string{
	"photo":    "photo",
	"video":    "video",
	"document": "document",
}

// SendSingleMedia implements send_single_media: POST sendPhoto|sendVideo|sendDocument.
func (c *Client) SendSingleMedia(ctx context.Context, chatID, kind, url, caption string, options optionsReader, keyboard *InlineKeyboard) SendResult {
	method, ok := mediaMethod[kind]
	if !ok {
		method = mediaMethod["photo"]
		kind = "photo"
	}
	payload := withOptions(map[string]interface{}{}, chatID, "", options, keyboard)
	payload[mediaFileField[kind]] = url
	if caption != "" {
		payload["caption"] = caption
		payload["parse_mode"] = "HTML"
	}
	return c.send(ctx, method, payload)
}

// SendMediaGroup implements send_media_group: POST sendMediaGroup. Caption
// attaches only to the first item. sendMediaGroup's result is an array of
// messages; the group's reported message_id is the first element's.
func (c *Client) SendMediaGroup(ctx context.Context, chatID string, items []MediaItem, captionOnFirst string, options optionsReader) SendResult {
	media := make([]map[string]interface{}, 0, len(items))
	for i, item := range items {
		entry := map[string]interface{}{
			"type":  item.Type,
			"media": item.URL,
		}
		if i == 0 && captionOnFirst != "" {
			entry["caption"] = captionOnFirst
			entry["parse_mode"] = "HTML"
		}
		media = append(media, entry)
	}
	payload := withOptions(map[string]interface{}{}, chatID, "", options, nil)
	payload["media"] = media

	env, status, err := c.call(ctx, "sendMediaGroup", payload)
	if err != nil {
		return SendResult{OK: false, Err: err, Retryable: true}
	}
	if !env.OK {
		retryable, classifyErr := classifyHTTP(status, env)
		return SendResult{OK: false, Err: classifyErr, Retryable: retryable}
	}
	var results []messageResult
	if err := json.Unmarshal(env.Result, &results); err != nil || len(results) == 0 {
		return SendResult{OK: true}
	}
	return SendResult{OK: true, MessageID: fmt.Sprintf("%d", results[0].MessageID)}
}

// Pin implements pin: POST pinChatMessage. Pin failures are reported as a
// SendResult but callers must not let them overturn a successful send.
func (c *Client) Pin(ctx context.Context, chatID, messageID string) SendResult {
	id, err := parseMessageID(messageID)
	if err != nil {
		return SendResult{OK: false, Err: err}
	}
	payload := map[string]interface{}{"chat_id": chatID, "message_id": id}
	return c.send(ctx, "pinChatMessage", payload)
}

func parseMessageID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, apperrors.Messaging(apperrors.CodeValidation).With("message_id", s).Wrap(err)
	}
	return id, nil
}

// VerifyAccess implements verify_access: getChat + getMe + getChatMember.
// Succeeds when the chat exists and the bot is a member in good standing:
// for channels, the bot must be creator or administrator; for groups, the
// bot must not be left/kicked/restricted.
func (c *Client) VerifyAccess(ctx context.Context, chatID string) (bool, error) {
	chatEnv, status, err := c.call(ctx, "getChat", map[string]interface{}{"chat_id": chatID})
	if err != nil {
		return false, err
	}
	if !chatEnv.OK {
		_, classifyErr := classifyHTTP(status, chatEnv)
		return false, classifyErr
	}
	var chat chatResult
	if err := json.Unmarshal(chatEnv.Result, &chat); err != nil {
		return false, apperrors.Messaging(apperrors.CodeTransport).Wrap(err)
	}

	meEnv, status, err := c.call(ctx, "getMe", map[string]interface{}{})
	if err != nil {
		return false, err
	}
	if !meEnv.OK {
		_, classifyErr := classifyHTTP(status, meEnv)
		return false, classifyErr
	}
	var me struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(meEnv.Result, &me); err != nil {
		return false, apperrors.Messaging(apperrors.CodeTransport).Wrap(err)
	}

	memberEnv, status, err := c.call(ctx, "getChatMember", map[string]interface{}{
		"chat_id": chatID,
		"user_id": me.ID,
	})
	if err != nil {
		return false, err
	}
	if !memberEnv.OK {
		_, classifyErr := classifyHTTP(status, memberEnv)
		return false, classifyErr
	}
	var member chatMemberResult
	if err := json.Unmarshal(memberEnv.Result, &member); err != nil {
		return false, apperrors.Messaging(apperrors.CodeTransport).Wrap(err)
	}

	if chat.Type == "channel" {
		return member.Status == "creator" || member.Status == "administrator", nil
	}
	switch member.Status {
	case "left", "kicked", "restricted":
		return false, nil
	default:
		return true, nil
	}
}
