// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/menuinzicht/backend/internal/domain/entity"
)

// SendEmailInput represents the input for sending an email.
// Tags are attached to the message at the provider for filtering.
type SendEmailInput struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Tags    map[string]string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ProviderID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send delivers one message. Failures are *domainerror.EmailError values
	// whose code tells permanent from temporary failures.
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// FeedbackNotifier queues the notification for a submitted feedback message.
type FeedbackNotifier interface {
	QueueFeedbackEmail(ctx context.Context, feedback *entity.Feedback) error
}
