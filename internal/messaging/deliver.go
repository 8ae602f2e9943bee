package messaging

import (
	"context"

	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/internal/domain"
	"github.com/gopublicist/publicist/pkg/logger"
)

// Deliver dispatches post to chatID according to its media count (0, 1, or
// ≥2), applying the media-group keyboard workaround and pin semantics.
func (c *Client) Deliver(ctx context.Context, chatID string, post *domain.Post) SendResult {
	keyboard := BuildInlineKeyboard(toInlineButtons(post.Buttons))
	options := post.Options

	var result SendResult
	switch {
	case len(post.Media) == 0:
		result = c.SendText(ctx, chatID, post.BodyHTML, options, keyboard)

	case len(post.Media) == 1:
		media := post.Media[0]
		result = c.SendSingleMedia(ctx, chatID, NormalizeMediaType(media.Type), media.URL, post.BodyHTML, options, keyboard)

	default:
		result = c.sendGroupWithKeyboard(ctx, chatID, post, keyboard, options)
	}

	if result.OK && options.Pin() && result.MessageID != "" {
		// Pin failures never overturn a successful send; they are only
		// logged.
		if pinResult := c.Pin(ctx, chatID, result.MessageID); !pinResult.OK {
			logger.Warnf("messaging: pin of message %s in %s failed: %v", result.MessageID, chatID, pinResult.Err)
		}
	}
	return result
}

// sendGroupWithKeyboard implements the media-group keyboard workaround:
// the remote protocol has no inline-keyboard support on media groups, so
// when a keyboard is present the group is sent first, then a follow-up
// text message carries the keyboard and becomes the recorded message id.
// If the follow-up fails, the whole send is reported failed even though
// the group message itself went out.
func (c *Client) sendGroupWithKeyboard(ctx context.Context, chatID string, post *domain.Post, keyboard *InlineKeyboard, options domain.Options) SendResult {
	items := toMediaItems(post.Media)
	groupResult := c.SendMediaGroup(ctx, chatID, items, post.BodyHTML, options)
	if !groupResult.OK {
		return groupResult
	}
	if keyboard == nil {
		return groupResult
	}

	followUp := c.SendText(ctx, chatID, "Подробнее:", options, keyboard)
	if !followUp.OK {
		if followUp.Err == nil {
			followUp.Err = apperrors.Messaging(apperrors.CodeTransport).
				Errorf("media group keyboard follow-up failed")
		}
		return followUp
	}
	return followUp
}

func toMediaItems(media []domain.Media) []MediaItem {
	items := make([]MediaItem, 0, len(media))
	for _, m := range media {
		items = append(items, MediaItem{Type: NormalizeMediaType(m.Type), URL: m.URL})
	}
	return items
}

func toInlineButtons(buttons []domain.Button) []InlineKeyboardButton {
	out := make([]InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, InlineKeyboardButton{Text: b.Text, URL: b.URL})
	}
	return out
}
