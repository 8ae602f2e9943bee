package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/gopublicist/publicist/internal/apperrors"
	corebun "github.com/gopublicist/publicist/internal/infra/database/bun"
	"github.com/gopublicist/publicist/internal/domain"
)

// PublicationRepository reads/writes Publication rows and implements the
// compare-and-set claim the worker's state machine relies on for
// cross-process mutual exclusion.
type PublicationRepository struct {
	*corebun.BaseRepository[domain.Publication]
}

func NewPublicationRepository(db *bun.DB) *PublicationRepository {
	return &PublicationRepository{
		BaseRepository: corebun.NewRepository[domain.Publication](db, &domain.Publication{}),
	}
}

func (r *PublicationRepository) FindByID(ctx context.Context, id int64) (*domain.Publication, error) {
	pub, err := r.Find(ctx, id)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeNotFound).With("publication_id", id).Wrap(err)
	}
	return pub, nil
}

// CountPublicationsInRange satisfies internal/scheduler.SlotCounter: the
// count of Publications for channelID with planned_at in [from, to).
func (r *PublicationRepository) CountPublicationsInRange(ctx context.Context, channelID int64, from, to time.Time) (int, error) {
	count, err := r.DB().NewSelect().
		Model((*domain.Publication)(nil)).
		Join("JOIN posts AS p ON p.id = pub.post_id").
		Where("p.channel_id = ?", channelID).
		Where("pub.planned_at >= ? AND pub.planned_at < ?", from, to).
		Count(ctx)
	if err != nil {
		return 0, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return count, nil
}

// RecoverStuckLeases restores every Publication stuck in processing past
// PROCESSING_TTL back to retry with a synthetic last_error, per the
// worker loop's first step.
func (r *PublicationRepository) RecoverStuckLeases(ctx context.Context, ttl time.Duration, maxAttempts int) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	res, err := r.DB().NewUpdate().
		Model((*domain.Publication)(nil)).
		Set("status = ?", domain.PublicationRetry).
		Set("ready_at = ?", time.Now().UTC()).
		Set("locked_at = NULL").
		Set("locked_by = NULL").
		Set("last_error = ?", "processing_ttl_expired").
		Set("updated_at = current_timestamp").
		Where("status = ?", domain.PublicationProcessing).
		Where("locked_at <= ?", cutoff).
		Where("attempts < ?", maxAttempts).
		Exec(ctx)
	if err != nil {
		return 0, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return int(n), nil
}

// SelectDueBatch returns up to limit Publications eligible for claim,
// ordered (ready_at, planned_at, id) for FIFO fairness.
func (r *PublicationRepository) SelectDueBatch(ctx context.Context, limit, maxAttempts int) ([]*domain.Publication, error) {
	var pubs []*domain.Publication
	err := r.DB().NewSelect().
		Model(&pubs).
		Where("status IN (?)", bun.In([]string{domain.PublicationScheduled, domain.PublicationRetry})).
		Where("ready_at <= ?", time.Now().UTC()).
		Where("attempts < ?", maxAttempts).
		OrderExpr("ready_at ASC, planned_at ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return pubs, nil
}

// Claim attempts the conditional update WHERE id=? AND status IN
// ('scheduled','retry') SET status='processing'. Returns false when zero
// rows were affected - another worker already won the claim.
func (r *PublicationRepository) Claim(ctx context.Context, id int64, workerID string) (bool, error) {
	res, err := r.DB().NewUpdate().
		Model((*domain.Publication)(nil)).
		Set("status = ?", domain.PublicationProcessing).
		Set("locked_at = ?", time.Now().UTC()).
		Set("locked_by = ?", workerID).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Where("status IN (?)", bun.In([]string{domain.PublicationScheduled, domain.PublicationRetry})).
		Exec(ctx)
	if err != nil {
		return false, apperrors.Store(apperrors.CodeDatabase).With("publication_id", id).Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return n > 0, nil
}

// MarkSent completes a successful send.
func (r *PublicationRepository) MarkSent(ctx context.Context, id int64, messageID string) error {
	now := time.Now().UTC()
	_, err := r.DB().NewUpdate().
		Model((*domain.Publication)(nil)).
		Set("status = ?", domain.PublicationSent).
		Set("message_id = ?", messageID).
		Set("sent_at = ?", now).
		Set("last_error = NULL").
		Set("locked_at = NULL").
		Set("locked_by = NULL").
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperrors.Store(apperrors.CodeDatabase).With("publication_id", id).Wrap(err)
	}
	return nil
}

// MarkFailed terminally fails a publication: attempts exhausted or the
// error was classified non-retryable.
func (r *PublicationRepository) MarkFailed(ctx context.Context, id int64, attempts int, lastError string) error {
	_, err := r.DB().NewUpdate().
		Model((*domain.Publication)(nil)).
		Set("status = ?", domain.PublicationFailed).
		Set("attempts = ?", attempts).
		Set("last_error = ?", lastError).
		Set("locked_at = NULL").
		Set("locked_by = NULL").
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperrors.Store(apperrors.CodeDatabase).With("publication_id", id).Wrap(err)
	}
	return nil
}

// MarkRetry schedules another attempt at readyAt.
func (r *PublicationRepository) MarkRetry(ctx context.Context, id int64, attempts int, readyAt time.Time, lastError string) error {
	_, err := r.DB().NewUpdate().
		Model((*domain.Publication)(nil)).
		Set("status = ?", domain.PublicationRetry).
		Set("attempts = ?", attempts).
		Set("ready_at = ?", readyAt).
		Set("last_error = ?", lastError).
		Set("locked_at = NULL").
		Set("locked_by = NULL").
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperrors.Store(apperrors.CodeDatabase).With("publication_id", id).Wrap(err)
	}
	return nil
}

// CountNonTerminalForPost reports how many Publications owned by postID
// are still outside {sent,failed,canceled}, used to decide whether the
// owning Post can be marked sent.
func (r *PublicationRepository) CountNonTerminalForPost(ctx context.Context, postID int64) (int, error) {
	count, err := r.DB().NewSelect().
		Model((*domain.Publication)(nil)).
		Where("post_id = ?", postID).
		Where("status NOT IN (?)", bun.In([]string{domain.PublicationSent, domain.PublicationFailed, domain.PublicationCanceled})).
		Count(ctx)
	if err != nil {
		return 0, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return count, nil
}

// CreateForPost inserts a new Publication row in the initial scheduled
// state, per the admin-create contract.
func (r *PublicationRepository) CreateForPost(ctx context.Context, postID int64, plannedAt, readyAt time.Time) (*domain.Publication, error) {
	pub := &domain.Publication{
		PostID:    postID,
		PlannedAt: plannedAt,
		ReadyAt:   readyAt,
		Status:    domain.PublicationScheduled,
	}
	if _, err := r.DB().NewInsert().Model(pub).Exec(ctx); err != nil {
		return nil, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return pub, nil
}

// CancelNonTerminalForPost moves every non-terminal Publication owned by
// postID to canceled, per an admin cancel action on the owning post.
func (r *PublicationRepository) CancelNonTerminalForPost(ctx context.Context, postID int64) error {
	_, err := r.DB().NewUpdate().
		Model((*domain.Publication)(nil)).
		Set("status = ?", domain.PublicationCanceled).
		Set("locked_at = NULL").
		Set("locked_by = NULL").
		Set("updated_at = current_timestamp").
		Where("post_id = ?", postID).
		Where("status NOT IN (?)", bun.In([]string{domain.PublicationSent, domain.PublicationFailed, domain.PublicationCanceled})).
		Exec(ctx)
	if err != nil {
		return apperrors.Store(apperrors.CodeDatabase).With("post_id", postID).Wrap(err)
	}
	return nil
}

// Reschedule rewrites a non-terminal/terminal-but-reschedulable
// Publication back to scheduled with attempts reset, per an admin
// reschedule action.
func (r *PublicationRepository) Reschedule(ctx context.Context, id int64, plannedAt, readyAt time.Time) error {
	_, err := r.DB().NewUpdate().
		Model((*domain.Publication)(nil)).
		Set("status = ?", domain.PublicationScheduled).
		Set("planned_at = ?", plannedAt).
		Set("ready_at = ?", readyAt).
		Set("attempts = 0").
		Set("last_error = NULL").
		Set("locked_at = NULL").
		Set("locked_by = NULL").
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return apperrors.Store(apperrors.CodeDatabase).With("publication_id", id).Wrap(err)
	}
	return nil
}

// ListOrdered returns Publication read views ordered by (ready_at,
// planned_at, id), the admin interface's contract for publication lists.
// status and channelID are optional filters: status="" matches any
// status, channelID=0 matches any channel.
func (r *PublicationRepository) ListOrdered(ctx context.Context, status string, channelID int64, limit, offset int) ([]*domain.Publication, error) {
	var pubs []*domain.Publication
	q := r.DB().NewSelect().
		Model(&pubs).
		OrderExpr("ready_at ASC, planned_at ASC, id ASC").
		Limit(limit).
		Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if channelID != 0 {
		q = q.Where("post_id IN (SELECT id FROM posts WHERE channel_id = ?)", channelID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return pubs, nil
}

// ErrorAggregate is one row of the per-error report the admin interface
// reads for diagnostics.
type ErrorAggregate struct {
	LastError string `bun:"last_error" json:"last_error"`
	Count     int    `bun:"count" json:"count"`
}

// ErrorReport aggregates last_error across failed/retry Publications.
func (r *PublicationRepository) ErrorReport(ctx context.Context) ([]ErrorAggregate, error) {
	var rows []ErrorAggregate
	err := r.DB().NewSelect().
		Model((*domain.Publication)(nil)).
		ColumnExpr("last_error").
		ColumnExpr("count(*) AS count").
		Where("last_error IS NOT NULL").
		Where("status IN (?)", bun.In([]string{domain.PublicationFailed, domain.PublicationRetry})).
		GroupExpr("last_error").
		OrderExpr("count DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, apperrors.Store(apperrors.CodeDatabase).Wrap(err)
	}
	return rows, nil
}
