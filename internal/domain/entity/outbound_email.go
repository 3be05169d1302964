package entity

import (
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbound email.
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxClaimed OutboxStatus = "claimed"
	OutboxSent    OutboxStatus = "sent"
	OutboxDead    OutboxStatus = "dead"
)

// DefaultMaxDeliveryAttempts is the number of send attempts before a message is dead.
const DefaultMaxDeliveryAttempts = 4

// deliveryBackoff is the wait before the next attempt, indexed by failed attempts so far.
var deliveryBackoff = []time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute}

// OutboundEmail is a rendered notification waiting in the outbox.
// FeedbackID identifies the submission it was rendered from; a submission
// produces at most one message.
type OutboundEmail struct {
	ID            uuid.UUID
	FeedbackID    uuid.UUID
	To            string
	ReplyTo       string
	Subject       string
	HTML          string
	Text          string
	Status        OutboxStatus
	Attempts      int
	MaxAttempts   int
	LastError     string
	ProviderID    string
	CreatedAt     time.Time
	NextAttemptAt time.Time
	ClaimedAt     *time.Time
	SentAt        *time.Time
}

// NewOutboundEmail creates a pending message that is due immediately.
func NewOutboundEmail(feedbackID uuid.UUID, to, replyTo, subject, html, text string, now time.Time) *OutboundEmail {
	now = now.UTC()
	return &OutboundEmail{
		ID:            uuid.New(),
		FeedbackID:    feedbackID,
		To:            to,
		ReplyTo:       replyTo,
		Subject:       subject,
		HTML:          html,
		Text:          text,
		Status:        OutboxPending,
		MaxAttempts:   DefaultMaxDeliveryAttempts,
		CreatedAt:     now,
		NextAttemptAt: now,
	}
}

// Due reports whether the message is pending and its next attempt has come.
func (m *OutboundEmail) Due(now time.Time) bool {
	return m.Status == OutboxPending && !now.Before(m.NextAttemptAt)
}

// Claim hands the message to a single dispatcher.
func (m *OutboundEmail) Claim(now time.Time) {
	now = now.UTC()
	m.Status = OutboxClaimed
	m.ClaimedAt = &now
}

// Delivered records the provider's message id.
func (m *OutboundEmail) Delivered(providerID string, now time.Time) {
	now = now.UTC()
	m.Status = OutboxSent
	m.ProviderID = providerID
	m.SentAt = &now
	m.ClaimedAt = nil
}

// Failed records a failed attempt. Temporary failures go back to pending
// after a backoff until MaxAttempts is reached.
func (m *OutboundEmail) Failed(err error, permanent bool, now time.Time) {
	m.Attempts++
	m.LastError = err.Error()
	m.ClaimedAt = nil

	if permanent || m.Attempts >= m.MaxAttempts {
		m.Status = OutboxDead
		return
	}
	m.Status = OutboxPending
	m.NextAttemptAt = now.UTC().Add(backoffAfter(m.Attempts))
}

func backoffAfter(attempts int) time.Duration {
	if attempts-1 < len(deliveryBackoff) {
		return deliveryBackoff[attempts-1]
	}
	return deliveryBackoff[len(deliveryBackoff)-1]
}
