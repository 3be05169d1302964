package dto

import (
	"github.com/menuinzicht/backend/internal/application/usecase/feedback"
)

// FeedbackRequest represents the request body for submitting dashboard feedback.
// Honeypot is a hidden form field that only bots fill in.
type FeedbackRequest struct {
	Feedback  string `json:"feedback"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Honeypot  string `json:"honeypot"`
}

// FeedbackResponse represents the response after submitting feedback.
type FeedbackResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ToFeedbackResponse converts a SendFeedbackOutput to FeedbackResponse DTO.
func ToFeedbackResponse(output *feedback.SendFeedbackOutput) FeedbackResponse {
	return FeedbackResponse{
		ID:      output.ID.String(),
		Message: output.Message,
	}
}
