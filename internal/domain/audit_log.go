package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// Audit actions for Publication state transitions. The worker writes
// send, retry and fail; no code in this module writes stuck_recovery or
// cancel, so stuck-lease recovery and cancellation leave no audit row.
const (
	AuditActionSend   = "send"
	AuditActionRetry  = "retry"
	AuditActionFail   = "fail"
	AuditActionStuck  = "stuck_recovery"
	AuditActionCancel = "cancel"
)

// Entity types an AuditLog row can reference.
const (
	EntityPost        = "post"
	EntityPublication = "publication"
)

// AuditLog is an append-only record of state transitions.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64                  `bun:"id,pk,autoincrement" json:"id"`
	EntityType string                 `bun:"entity_type,notnull" json:"entity_type"`
	EntityID   int64                  `bun:"entity_id,notnull" json:"entity_id"`
	Action     string                 `bun:"action,notnull" json:"action"`
	Meta       map[string]interface{} `bun:"meta,type:json,nullzero" json:"meta,omitempty"`
	CreatedAt  time.Time              `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
