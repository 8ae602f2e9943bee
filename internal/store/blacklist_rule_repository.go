package store

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/gopublicist/publicist/internal/apperrors"
	corebun "github.com/gopublicist/publicist/internal/infra/database/bun"
	"github.com/gopublicist/publicist/internal/domain"
)

// BlacklistRuleRepository reads/writes BlacklistRule rows and satisfies
// internal/contentvalidator.RuleSource.
type BlacklistRuleRepository struct {
	*corebun.BaseRepository[domain.BlacklistRule]
}

func NewBlacklistRuleRepository(db *bun.DB) *BlacklistRuleRepository {
	return &BlacklistRuleRepository{
		BaseRepository: corebun.NewRepository[domain.BlacklistRule](db, &domain.BlacklistRule{}),
	}
}

// EnabledBlacklistRules satisfies contentvalidator.RuleSource.
func (r *BlacklistRuleRepository) EnabledBlacklistRules(ctx context.Context) ([]domain.BlacklistRule, error) {
	var rules []domain.BlacklistRule
	err := r.DB().NewSelect().
		Model(&rules).
		Where("is_enabled = ?", true).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return rules, nil
}
