// Package store implements the durable-store repositories the scheduling
// core reads and writes through, layered on a generic bun.BaseRepository.
package store

import (
	"context"

	"github.com/uptrace/bun"

	corebun "github.com/gopublicist/publicist/internal/infra/database/bun"
	"github.com/gopublicist/publicist/internal/apperrors"
	"github.com/gopublicist/publicist/internal/domain"
)

// ChannelRepository reads/writes Channel rows. Channels are owned by the
// admin interface; the scheduling core only ever reads them.
type ChannelRepository struct {
	*corebun.BaseRepository[domain.Channel]
}

func NewChannelRepository(db *bun.DB) *ChannelRepository {
	return &ChannelRepository{
		BaseRepository: corebun.NewRepository[domain.Channel](db, &domain.Channel{}),
	}
}

func (r *ChannelRepository) FindByID(ctx context.Context, id int64) (*domain.Channel, error) {
	ch, err := r.Find(ctx, id)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeNotFound).With("channel_id", id).Wrap(err)
	}
	return ch, nil
}

// FindByTitle resolves a channel by its exact title, for the CSV import
// boundary's channel_title column.
func (r *ChannelRepository) FindByTitle(ctx context.Context, title string) (*domain.Channel, error) {
	ch, err := r.FindBy(ctx, "title", title)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeNotFound).With("channel_title", title).Wrap(err)
	}
	return ch, nil
}

func (r *ChannelRepository) All(ctx context.Context) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	err := r.DB().NewSelect().Model(&channels).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return channels, nil
}
