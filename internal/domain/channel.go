package domain

import (
	"github.com/uptrace/bun"

	corebun "github.com/gopublicist/publicist/internal/infra/database/bun"
)

// Channel is the identity of a destination chat. It is owned by the admin
// interface; the scheduling core only ever reads it.
type Channel struct {
	bun.BaseModel `bun:"table:channels,alias:ch"`
	corebun.Timestamps

	ID int64 `bun:"id,pk,autoincrement" json:"id"`

	Title string `bun:"title,notnull" json:"title"`

	// DestinationID is the raw, normalized destination identifier - see
	// internal/messaging.NormalizeChatID for the accepted forms.
	DestinationID string `bun:"destination_id,notnull" json:"destination_id"`

	// CredentialToken is the bot token used to authenticate against the
	// remote messaging service. Never logged or rendered in read views.
	CredentialToken string `bun:"credential_token,notnull" json:"-"`

	// Timezone is an IANA zone name; defaults to Europe/Moscow.
	Timezone string `bun:"timezone,notnull,default:'Europe/Moscow'" json:"timezone"`

	// DailyTime is a wall-clock "HH:MM" in Timezone: the channel's base
	// publication time for internal/scheduler.CalculateNextSlot.
	DailyTime string `bun:"daily_time,notnull" json:"daily_time"`

	AllowedWindowStart string `bun:"allowed_window_start,notnull" json:"allowed_window_start"`
	AllowedWindowEnd   string `bun:"allowed_window_end,notnull" json:"allowed_window_end"`
}

const DefaultTimezone = "Europe/Moscow"
