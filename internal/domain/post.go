package domain

import (
	"github.com/uptrace/bun"

	corebun "github.com/gopublicist/publicist/internal/infra/database/bun"
)

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusQueued    = "queued"
	PostStatusSent      = "sent"
	PostStatusFailed    = "failed"
	PostStatusCanceled  = "canceled"
)

// Blacklist check outcomes recorded on a Post by internal/contentvalidator.
const (
	BlacklistCheckOK      = "ok"
	BlacklistCheckBlocked = "blocked"
)

// Media kinds accepted by the remote messaging service.
const (
	MediaPhoto    = "photo"
	MediaVideo    = "video"
	MediaDocument = "document"
)

// Media is one attachment on a Post.
type Media struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Button is one inline-keyboard entry; internal/messaging groups each
// survivor into its own single-button row.
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Options carries the recognized post options: disable_notification,
// protect_content, disable_preview, pin. Unknown keys are preserved but
// ignored by the messaging client.
type Options map[string]interface{}

func (o Options) bool(key string) bool {
	v, ok := o[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (o Options) DisableNotification() bool { return o.bool("disable_notification") }
func (o Options) ProtectContent() bool      { return o.bool("protect_content") }
func (o Options) DisablePreview() bool      { return o.bool("disable_preview") }
func (o Options) Pin() bool                 { return o.bool("pin") }

// Post is authored content awaiting or assigned to publication.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	corebun.Timestamps

	ID        int64 `bun:"id,pk,autoincrement" json:"id"`
	ChannelID int64 `bun:"channel_id,notnull" json:"channel_id"`

	Title    string   `bun:"title,notnull" json:"title"`
	BodyHTML string   `bun:"body_html,notnull" json:"body_html"`
	Media    []Media  `bun:"media,type:json,nullzero" json:"media"`
	Buttons  []Button `bun:"buttons,type:json,nullzero" json:"buttons"`
	Options  Options  `bun:"options,type:json,nullzero" json:"options"`

	BlacklistCheckStatus string  `bun:"blacklist_check_status,notnull,default:'ok'" json:"blacklist_check_status"`
	BlacklistReason      *string `bun:"blacklist_reason" json:"blacklist_reason,omitempty"`

	Status string `bun:"status,notnull,default:'draft'" json:"status"`
}

// PostStatusIsTerminal reports whether status is one the core never exits.
func PostStatusIsTerminal(status string) bool {
	switch status {
	case PostStatusSent, PostStatusFailed, PostStatusCanceled:
		return true
	default:
		return false
	}
}
