package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopublicist/publicist/internal/domain"
	"github.com/gopublicist/publicist/pkg/testutil"
)

func TestChannelRepository_CreateAndFind(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewChannelRepository(db)

	ch := &domain.Channel{
		Title:              "News",
		DestinationID:      "@news_channel",
		CredentialToken:    "secret-token",
		Timezone:           domain.DefaultTimezone,
		DailyTime:          "10:00",
		AllowedWindowStart: "08:00",
		AllowedWindowEnd:   "22:00",
	}
	created, err := repo.Create(ctx, ch)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "News", found.Title)
	assert.Equal(t, domain.DefaultTimezone, found.Timezone)
}

func TestChannelRepository_FindByIDNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewChannelRepository(db)

	_, err := repo.FindByID(ctx, 999)
	assert.Error(t, err)
}
