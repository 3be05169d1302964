package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFeedbackLength is the maximum number of characters accepted in a feedback message.
const MaxFeedbackLength = 5000

// Feedback is a message submitted from the dashboard.
type Feedback struct {
	ID          uuid.UUID
	Message     string
	UserName    string
	UserEmail   string
	SubmittedAt time.Time
}

// NewFeedback creates a new Feedback entity with a trimmed message.
func NewFeedback(message, userName, userEmail string) *Feedback {
	return &Feedback{
		ID:          uuid.New(),
		Message:     strings.TrimSpace(message),
		UserName:    strings.TrimSpace(userName),
		UserEmail:   strings.TrimSpace(userEmail),
		SubmittedAt: time.Now().UTC(),
	}
}
