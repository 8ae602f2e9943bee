package store

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/gopublicist/publicist/internal/apperrors"
	corebun "github.com/gopublicist/publicist/internal/infra/database/bun"
	"github.com/gopublicist/publicist/internal/domain"
)

// PostRepository reads/writes Post rows.
type PostRepository struct {
	*corebun.BaseRepository[domain.Post]
}

func NewPostRepository(db *bun.DB) *PostRepository {
	return &PostRepository{
		BaseRepository: corebun.NewRepository[domain.Post](db, &domain.Post{}),
	}
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := r.Find(ctx, id)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeNotFound).With("post_id", id).Wrap(err)
	}
	return post, nil
}

// SetStatus updates only status via raw SQL, bypassing BaseRepository's
// OmitZero (which would silently skip a zero-valued Status field).
func (r *PostRepository) SetStatus(ctx context.Context, db bun.IDB, id int64, status string) error {
	_, err := db.NewUpdate().
		Model((*domain.Post)(nil)).
		Set("status = ?", status).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperrors.Store(apperrors.CodeDatabase).With("post_id", id).Wrap(err)
	}
	return nil
}

// SetBlacklistResult records the content validator's verdict on a post.
func (r *PostRepository) SetBlacklistResult(ctx context.Context, id int64, status string, reason *string) error {
	q := r.DB().NewUpdate().
		Model((*domain.Post)(nil)).
		Set("blacklist_check_status = ?", status).
		Set("updated_at = current_timestamp").
		Where("id = ?", id)
	if reason != nil {
		q = q.Set("blacklist_reason = ?", *reason)
	} else {
		q = q.Set("blacklist_reason = NULL")
	}
	if _, err := q.Exec(ctx); err != nil {
		return apperrors.Store(apperrors.CodeDatabase).With("post_id", id).Wrap(err)
	}
	return nil
}
