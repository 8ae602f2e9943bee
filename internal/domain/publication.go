package domain

import (
	"time"

	"github.com/uptrace/bun"

	corebun "github.com/gopublicist/publicist/internal/infra/database/bun"
)

// Publication statuses. Initial is Scheduled; terminal are Sent, Failed,
// Canceled - the core never exits a terminal state.
const (
	PublicationScheduled  = "scheduled"
	PublicationRetry      = "retry"
	PublicationProcessing = "processing"
	PublicationSent       = "sent"
	PublicationFailed     = "failed"
	PublicationCanceled   = "canceled"
)

func PublicationStatusIsTerminal(status string) bool {
	switch status {
	case PublicationSent, PublicationFailed, PublicationCanceled:
		return true
	default:
		return false
	}
}

// Publication is one scheduled attempt stream for a Post. It is created
// by the admin interface at scheduling time and owned by the worker
// thereafter.
type Publication struct {
	bun.BaseModel `bun:"table:publications,alias:pub"`
	corebun.Timestamps

	ID     int64 `bun:"id,pk,autoincrement" json:"id"`
	PostID int64 `bun:"post_id,notnull" json:"post_id"`

	// PlannedAt and ReadyAt are tz-naive UTC. ReadyAt <= PlannedAt is
	// allowed - a manual "retry now" pulls readiness forward.
	PlannedAt time.Time `bun:"planned_at,notnull" json:"planned_at"`
	ReadyAt   time.Time `bun:"ready_at,notnull" json:"ready_at"`

	Status   string `bun:"status,notnull,default:'scheduled'" json:"status"`
	Attempts int    `bun:"attempts,notnull,default:0" json:"attempts"`

	LockedAt *time.Time `bun:"locked_at" json:"locked_at,omitempty"`
	LockedBy *string    `bun:"locked_by" json:"locked_by,omitempty"`

	MessageID *string    `bun:"message_id" json:"message_id,omitempty"`
	SentAt    *time.Time `bun:"sent_at" json:"sent_at,omitempty"`
	LastError *string    `bun:"last_error" json:"last_error,omitempty"`
}
