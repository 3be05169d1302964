package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/menuinzicht/backend/internal/domain/entity"
)

// OutboundEmailModel represents the email_outbox table in the database.
type OutboundEmailModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	FeedbackID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ToEmail       string    `gorm:"type:varchar(255);not null"`
	ReplyTo       string    `gorm:"type:varchar(255)"`
	Subject       string    `gorm:"type:varchar(500);not null"`
	HTMLBody      string    `gorm:"type:text;not null"`
	TextBody      string    `gorm:"type:text"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending';index:idx_outbox_due,priority:1"`
	Attempts      int       `gorm:"not null;default:0"`
	MaxAttempts   int       `gorm:"not null"`
	LastError     string    `gorm:"type:text"`
	ProviderID    string    `gorm:"type:varchar(100)"`
	CreatedAt     time.Time `gorm:"not null"`
	NextAttemptAt time.Time `gorm:"not null;index:idx_outbox_due,priority:2"`
	ClaimedAt     *time.Time
	SentAt        *time.Time
}

// TableName returns the table name for the OutboundEmailModel.
func (OutboundEmailModel) TableName() string {
	return "email_outbox"
}

// ToEntity converts the row to a domain OutboundEmail.
func (m *OutboundEmailModel) ToEntity() *entity.OutboundEmail {
	return &entity.OutboundEmail{
		ID:            m.ID,
		FeedbackID:    m.FeedbackID,
		To:            m.ToEmail,
		ReplyTo:       m.ReplyTo,
		Subject:       m.Subject,
		HTML:          m.HTMLBody,
		Text:          m.TextBody,
		Status:        entity.OutboxStatus(m.Status),
		Attempts:      m.Attempts,
		MaxAttempts:   m.MaxAttempts,
		LastError:     m.LastError,
		ProviderID:    m.ProviderID,
		CreatedAt:     m.CreatedAt,
		NextAttemptAt: m.NextAttemptAt,
		ClaimedAt:     m.ClaimedAt,
		SentAt:        m.SentAt,
	}
}

// OutboundEmailModelFromEntity creates a row from a domain OutboundEmail.
func OutboundEmailModelFromEntity(msg *entity.OutboundEmail) *OutboundEmailModel {
	return &OutboundEmailModel{
		ID:            msg.ID,
		FeedbackID:    msg.FeedbackID,
		ToEmail:       msg.To,
		ReplyTo:       msg.ReplyTo,
		Subject:       msg.Subject,
		HTMLBody:      msg.HTML,
		TextBody:      msg.Text,
		Status:        string(msg.Status),
		Attempts:      msg.Attempts,
		MaxAttempts:   msg.MaxAttempts,
		LastError:     msg.LastError,
		ProviderID:    msg.ProviderID,
		CreatedAt:     msg.CreatedAt.UTC(),
		NextAttemptAt: msg.NextAttemptAt.UTC(),
		ClaimedAt:     msg.ClaimedAt,
		SentAt:        msg.SentAt,
	}
}
