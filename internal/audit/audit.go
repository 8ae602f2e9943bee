// Package audit appends state-transition records for posts and
// publications. Writes share the caller's transaction where one is
// present, so a store failure surfaces to the caller rather than being
// silently swallowed.
package audit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/internal/domain"
)

// Writer appends AuditLog rows.
type Writer struct {
	db bun.IDB
}

func NewWriter(db bun.IDB) *Writer {
	return &Writer{db: db}
}

// Log appends one audit row. meta is JSON-encoded as-is (UTF-8, non-ASCII
// preserved by bun's json column handling).
func (w *Writer) Log(ctx context.Context, entityType string, entityID int64, action string, meta map[string]interface{}) error {
	row := &domain.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Meta:       meta,
	}
	if _, err := w.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return apperrors.Store(apperrors.CodeDatabase).
			With("entity_type", entityType).
			With("entity_id", entityID).
			With("action", action).
			Wrap(err)
	}
	return nil
}
