package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/menuinzicht/backend/internal/application/adapter"
	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
	"github.com/menuinzicht/backend/internal/integration/persistence/model"
)

// emailOutboxRepository implements the adapter.EmailOutbox interface.
type emailOutboxRepository struct {
	db *gorm.DB
}

// NewEmailOutboxRepository creates a new email outbox repository instance.
func NewEmailOutboxRepository(db *gorm.DB) adapter.EmailOutbox {
	return &emailOutboxRepository{
		db: db,
	}
}

// Enqueue stores msg unless its feedback already has a message.
func (r *emailOutboxRepository) Enqueue(ctx context.Context, msg *entity.OutboundEmail) error {
	row := model.OutboundEmailModelFromEntity(msg)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feedback_id"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeOutboxFailed,
			"failed to enqueue email",
			err,
		)
	}
	return nil
}

// ClaimDue selects due rows with SKIP LOCKED on PostgreSQL and flips them to
// claimed in the same transaction. SQLite ignores the locking clause and
// serializes writers instead.
func (r *emailOutboxRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboundEmail, error) {
	now = now.UTC()
	var rows []model.OutboundEmailModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND next_attempt_at <= ?", string(entity.OutboxPending), now).
			Order("next_attempt_at ASC").
			Limit(limit).
			Find(&rows).Error
		if err != nil || len(rows) == 0 {
			return err
		}

		ids := make([]uuid.UUID, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		return tx.Model(&model.OutboundEmailModel{}).
			Where("id IN ? AND status = ?", ids, string(entity.OutboxPending)).
			Updates(map[string]interface{}{
				"status":     string(entity.OutboxClaimed),
				"claimed_at": now,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim due emails: %w", err)
	}

	claimed := make([]*entity.OutboundEmail, len(rows))
	for i := range rows {
		msg := rows[i].ToEntity()
		msg.Claim(now)
		claimed[i] = msg
	}
	return claimed, nil
}

// Save writes the full state of msg.
func (r *emailOutboxRepository) Save(ctx context.Context, msg *entity.OutboundEmail) error {
	if err := r.db.WithContext(ctx).Save(model.OutboundEmailModelFromEntity(msg)).Error; err != nil {
		return fmt.Errorf("failed to save outbound email %s: %w", msg.ID, err)
	}
	return nil
}

// Get retrieves a message by its ID.
func (r *emailOutboxRepository) Get(ctx context.Context, id uuid.UUID) (*entity.OutboundEmail, error) {
	var row model.OutboundEmailModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrOutboundEmailNotFound
		}
		return nil, fmt.Errorf("failed to get outbound email %s: %w", id, err)
	}
	return row.ToEntity(), nil
}

// RequeueStale releases claims left behind by a dispatcher that stopped mid-batch.
func (r *emailOutboxRepository) RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.OutboundEmailModel{}).
		Where("status = ? AND claimed_at < ?", string(entity.OutboxClaimed), claimedBefore.UTC()).
		Updates(map[string]interface{}{
			"status":     string(entity.OutboxPending),
			"claimed_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to requeue stale emails: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PurgeSent deletes messages delivered before the cutoff.
func (r *emailOutboxRepository) PurgeSent(ctx context.Context, sentBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", string(entity.OutboxSent), sentBefore.UTC()).
		Delete(&model.OutboundEmailModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge sent emails: %w", result.Error)
	}
	return result.RowsAffected, nil
}
