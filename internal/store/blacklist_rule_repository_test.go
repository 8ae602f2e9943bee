package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopublicist/publicist/internal/contentvalidator"
	"github.com/gopublicist/publicist/internal/domain"
	"github.com/gopublicist/publicist/pkg/testutil"
)

func TestBlacklistRuleRepository_EnabledBlacklistRulesExcludesDisabled(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewBlacklistRuleRepository(db)

	_, err := repo.Create(ctx, &domain.BlacklistRule{Type: domain.BlacklistRuleWord, Pattern: "spam", IsEnabled: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.BlacklistRule{Type: domain.BlacklistRuleWord, Pattern: "ignored", IsEnabled: false})
	require.NoError(t, err)

	rules, err := repo.EnabledBlacklistRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "spam", rules[0].Pattern)
}

// Confirms BlacklistRuleRepository satisfies contentvalidator.RuleSource.
func TestBlacklistRuleRepository_SatisfiesRuleSource(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewBlacklistRuleRepository(db)
	validator := contentvalidator.New(repo)
	assert.NotNil(t, validator)
}
