// Package feedback contains the dashboard feedback use case.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/menuinzicht/backend/internal/application/adapter"
	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// SendFeedbackInput represents the input for submitting feedback.
type SendFeedbackInput struct {
	Feedback  string
	UserName  string
	UserEmail string
	Honeypot  string
}

// SendFeedbackOutput represents the output of submitting feedback.
type SendFeedbackOutput struct {
	ID      uuid.UUID
	Message string
}

// SendFeedbackUseCase handles feedback submission.
type SendFeedbackUseCase struct {
	notifier adapter.FeedbackNotifier
}

// NewSendFeedbackUseCase creates a new SendFeedbackUseCase instance.
func NewSendFeedbackUseCase(notifier adapter.FeedbackNotifier) *SendFeedbackUseCase {
	return &SendFeedbackUseCase{
		notifier: notifier,
	}
}

// Execute validates the feedback and queues the notification email.
func (uc *SendFeedbackUseCase) Execute(ctx context.Context, input SendFeedbackInput) (*SendFeedbackOutput, error) {
	if err := uc.validateInput(input); err != nil {
		return nil, err
	}

	fb := entity.NewFeedback(input.Feedback, input.UserName, input.UserEmail)

	if uc.notifier == nil {
		// Email not configured, keep the message in the logs
		slog.Info("Feedback received (email service not configured)",
			"feedback_id", fb.ID,
			"user_name", fb.UserName,
			"length", utf8.RuneCountInString(fb.Message),
		)
		return &SendFeedbackOutput{ID: fb.ID, Message: "Feedback sent successfully"}, nil
	}

	if err := uc.notifier.QueueFeedbackEmail(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to queue feedback email: %w", err)
	}

	slog.Info("Feedback queued", "feedback_id", fb.ID)

	return &SendFeedbackOutput{ID: fb.ID, Message: "Feedback sent successfully"}, nil
}

// validateInput validates the feedback input.
func (uc *SendFeedbackUseCase) validateInput(input SendFeedbackInput) error {
	if input.Honeypot != "" {
		return domainerror.NewEmailError(
			domainerror.ErrCodeFeedbackSpam,
			"invalid submission",
			domainerror.ErrFeedbackSpam,
		)
	}

	message := strings.TrimSpace(input.Feedback)
	if message == "" {
		return domainerror.NewEmailError(
			domainerror.ErrCodeFeedbackEmpty,
			"feedback cannot be empty",
			domainerror.ErrFeedbackEmpty,
		)
	}

	if utf8.RuneCountInString(message) > entity.MaxFeedbackLength {
		return domainerror.NewEmailError(
			domainerror.ErrCodeFeedbackTooLong,
			"feedback is too long",
			domainerror.ErrFeedbackTooLong,
		)
	}

	return nil
}
