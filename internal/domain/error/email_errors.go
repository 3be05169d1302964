// Package error defines domain-specific errors for the MenuInzicht analytics backend.
package error

import "errors"

// Feedback and email domain errors.
var (
	// ErrFeedbackEmpty is returned when the feedback text is blank.
	ErrFeedbackEmpty = errors.New("feedback cannot be empty")

	// ErrFeedbackTooLong is returned when the feedback exceeds the maximum length.
	ErrFeedbackTooLong = errors.New("feedback is too long (max 5000 characters)")

	// ErrFeedbackSpam is returned when the honeypot field was filled in.
	ErrFeedbackSpam = errors.New("invalid submission")

	// ErrOutboundEmailNotFound is returned when an outbox message cannot be found.
	ErrOutboundEmailNotFound = errors.New("outbound email not found")
)

// EmailErrorCode defines error codes for feedback and email errors.
// Format: FBK-XXYYYY where XX is category and YYYY is specific error.
type EmailErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeFeedbackEmpty   EmailErrorCode = "FBK-010001"
	ErrCodeFeedbackTooLong EmailErrorCode = "FBK-010002"
	ErrCodeFeedbackSpam    EmailErrorCode = "FBK-010003"

	// Delivery errors (02XXXX)
	ErrCodeOutboxFailed          EmailErrorCode = "FBK-020001"
	ErrCodePermanentEmailFailure EmailErrorCode = "FBK-020002"
	ErrCodeTemporaryEmailFailure EmailErrorCode = "FBK-020003"

	// Rendering errors (03XXXX)
	ErrCodeTemplateRenderFailed EmailErrorCode = "FBK-030001"

	// Rate limiting (04XXXX)
	ErrCodeRateLimited EmailErrorCode = "FBK-040001"
)

// EmailError represents a feedback or email error with code and message.
type EmailError struct {
	Code    EmailErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *EmailError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *EmailError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err is a delivery failure that a retry cannot fix.
func IsPermanent(err error) bool {
	var emailErr *EmailError
	return errors.As(err, &emailErr) && emailErr.Code == ErrCodePermanentEmailFailure
}

// NewEmailError creates a new EmailError with the given code and message.
func NewEmailError(code EmailErrorCode, message string, err error) *EmailError {
	return &EmailError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
