package messaging

import (
	"regexp"
	"strings"
)

var (
	tMeURLPrefixes = []string{"https://t.me/", "http://t.me/", "t.me/"}
	chatUsernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{5,}$`)
	numericIDRe    = regexp.MustCompile(`^-?[0-9]+$`)
)

// NormalizeMediaType aliases common variants onto the three kinds the
// remote service accepts; anything unrecognized collapses to photo.
func NormalizeMediaType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "photo", "image", "img":
		return "photo"
	case "video":
		return "video"
	case "document", "gif", "file":
		return "document"
	default:
		return "photo"
	}
}

// NormalizeChatID strips t.me URL prefixes and returns the accepted wire
// forms: a bare @username, a numeric id, or an @-prefixed bare handle.
// Idempotent.
func NormalizeChatID(raw string) string {
	id := strings.TrimSpace(raw)
	for _, prefix := range tMeURLPrefixes {
		if strings.HasPrefix(id, prefix) {
			id = strings.TrimPrefix(id, prefix)
			break
		}
	}
	id = strings.TrimSuffix(id, "/")

	if strings.HasPrefix(id, "@") {
		return id
	}
	if numericIDRe.MatchString(id) {
		return id
	}
	if chatUsernameRe.MatchString(id) {
		return "@" + id
	}
	return id
}

// BuildInlineKeyboard drops entries missing text or url, groups each
// survivor into its own single-button row, and returns nil when no
// buttons survive.
func BuildInlineKeyboard(buttons []InlineKeyboardButton) *InlineKeyboard {
	var rows [][]InlineKeyboardButton
	for _, b := range buttons {
		if b.Text == "" || b.URL == "" {
			continue
		}
		rows = append(rows, []InlineKeyboardButton{b})
	}
	if len(rows) == 0 {
		return nil
	}
	return &InlineKeyboard{InlineKeyboardRows: rows}
}
