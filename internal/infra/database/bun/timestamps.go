// Package bun holds the shared bun.BaseModel scaffolding reused by every
// domain model in internal/domain.
package bun

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Timestamps is embedded by every domain model. Unlike a generic
// actor-tracking CoreModel, the scheduling core has no authenticated actor
// of its own (Channels/BlacklistRules are admin-owned and read-only here,
// Publications are owned outright by the worker), so this only carries
// created_at/updated_at - no created_by/version columns go unused.
type Timestamps struct {
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeAppendModelHook = (*Timestamps)(nil)

func (t *Timestamps) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		now := time.Now().UTC()
		t.CreatedAt = now
		t.UpdatedAt = now
	case *bun.UpdateQuery:
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}
