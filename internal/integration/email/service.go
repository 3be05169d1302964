package email

import (
	"context"
	"time"

	"github.com/menuinzicht/backend/internal/application/adapter"
	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
	"github.com/menuinzicht/backend/internal/integration/email/templates"
)

// submittedLayout renders the submission time like "Tuesday, 14 October 2025 15:04 CEST".
const submittedLayout = "Monday, 2 January 2006 15:04 MST"

// Service renders feedback notifications and puts them in the outbox.
type Service struct {
	outbox    adapter.EmailOutbox
	renderer  *templates.Renderer
	recipient string
	location  *time.Location
	now       func() time.Time
}

// NewService creates a service that notifies recipient of every feedback message.
// A nil location formats timestamps in UTC.
func NewService(outbox adapter.EmailOutbox, renderer *templates.Renderer, recipient string, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		outbox:    outbox,
		renderer:  renderer,
		recipient: recipient,
		location:  location,
		now:       time.Now,
	}
}

// QueueFeedbackEmail renders the notification for fb and enqueues it.
// Replies go to the submitter when they left an email address.
func (s *Service) QueueFeedbackEmail(ctx context.Context, fb *entity.Feedback) error {
	notice, err := s.renderer.RenderFeedback(templates.FeedbackData{
		Message:     fb.Message,
		UserName:    fb.UserName,
		UserEmail:   fb.UserEmail,
		SubmittedAt: fb.SubmittedAt.In(s.location).Format(submittedLayout),
	})
	if err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeTemplateRenderFailed,
			"failed to render feedback email",
			err,
		)
	}

	msg := entity.NewOutboundEmail(fb.ID, s.recipient, fb.UserEmail, notice.Subject, notice.HTML, notice.Text, s.now())
	return s.outbox.Enqueue(ctx, msg)
}

var _ adapter.FeedbackNotifier = (*Service)(nil)
