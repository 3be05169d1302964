package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/menuinzicht/backend/internal/domain/entity"
)

// EmailOutbox persists rendered notifications until they are delivered.
type EmailOutbox interface {
	// Enqueue stores a pending message. A second message for the same
	// feedback is ignored.
	Enqueue(ctx context.Context, msg *entity.OutboundEmail) error

	// ClaimDue atomically moves up to limit due messages to claimed and returns them,
	// oldest first. Messages claimed by another dispatcher are skipped.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboundEmail, error)

	// Save persists the delivery outcome of a claimed message.
	Save(ctx context.Context, msg *entity.OutboundEmail) error

	// Get retrieves a message by its ID.
	Get(ctx context.Context, id uuid.UUID) (*entity.OutboundEmail, error)

	// RequeueStale returns messages claimed before the cutoff to pending.
	RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error)

	// PurgeSent deletes messages delivered before the cutoff.
	PurgeSent(ctx context.Context, sentBefore time.Time) (int64, error)
}
