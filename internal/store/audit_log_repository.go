package store

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/gopublicist/publicist/internal/apperrors"
	corebun "github.com/gopublicist/publicist/internal/infra/database/bun"
	"github.com/gopublicist/publicist/internal/domain"
)

// AuditLogRepository reads AuditLog rows for the admin interface's
// activity views. Writes go through internal/audit.Writer, which writes
// through the bun.IDB it was built with; the worker builds it on the
// shared *bun.DB and runs no transaction, so each audit row is committed
// on its own.
type AuditLogRepository struct {
	*corebun.BaseRepository[domain.AuditLog]
}

func NewAuditLogRepository(db *bun.DB) *AuditLogRepository {
	return &AuditLogRepository{
		BaseRepository: corebun.NewRepository[domain.AuditLog](db, &domain.AuditLog{}),
	}
}

// ForEntity lists AuditLog rows for one entity, newest first.
func (r *AuditLogRepository) ForEntity(ctx context.Context, entityType string, entityID int64) ([]*domain.AuditLog, error) {
	var rows []*domain.AuditLog
	err := r.DB().NewSelect().
		Model(&rows).
		Where("entity_type = ?", entityType).
		Where("entity_id = ?", entityID).
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return rows, nil
}
