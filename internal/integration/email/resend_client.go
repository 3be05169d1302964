// Package email delivers feedback notifications through Resend.
package email

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/menuinzicht/backend/internal/application/adapter"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
)

// ResendClient implements the adapter.EmailSender interface using Resend.
type ResendClient struct {
	client *resend.Client
	from   string
}

// NewResendClient creates a new Resend client sending as "fromName <fromEmail>".
func NewResendClient(apiKey, fromName, fromEmail string) *ResendClient {
	from := fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}
	return &ResendClient{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send delivers one message via Resend.
func (c *ResendClient) Send(ctx context.Context, input adapter.SendEmailInput) (*adapter.SendEmailResult, error) {
	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{input.To},
		Subject: input.Subject,
		Html:    input.HTML,
		Text:    input.Text,
		ReplyTo: input.ReplyTo,
		Tags:    resendTags(input.Tags),
	}

	resp, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return nil, domainerror.NewEmailError(classifySendError(err), "resend rejected the email", err)
	}

	return &adapter.SendEmailResult{
		ProviderID: resp.Id,
	}, nil
}

// resendTags converts tags to Resend's list form, sorted by name.
func resendTags(tags map[string]string) []resend.Tag {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]resend.Tag, len(names))
	for i, name := range names {
		out[i] = resend.Tag{Name: name, Value: tags[name]}
	}
	return out
}

// permanentMarkers identify Resend responses that fail again on retry:
// bad credentials, unverified domains and rejected payloads. Rate limits,
// timeouts and 5xx responses are temporary.
var permanentMarkers = []string{
	"401",
	"403",
	"422",
	"unauthorized",
	"forbidden",
	"validation",
	"invalid",
	"not verified",
}

// classifySendError maps a Resend error to a permanent or temporary failure code.
func classifySendError(err error) domainerror.EmailErrorCode {
	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return domainerror.ErrCodePermanentEmailFailure
		}
	}
	return domainerror.ErrCodeTemporaryEmailFailure
}

// MockEmailSender records sent emails instead of delivering them.
type MockEmailSender struct {
	SentEmails  []adapter.SendEmailInput
	FailError   error
	IsPermanent bool
}

// NewMockEmailSender creates a new mock email sender.
func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

// Send records input, or fails with FailError when it is set.
func (m *MockEmailSender) Send(_ context.Context, input adapter.SendEmailInput) (*adapter.SendEmailResult, error) {
	if m.FailError != nil {
		code := domainerror.ErrCodeTemporaryEmailFailure
		if m.IsPermanent {
			code = domainerror.ErrCodePermanentEmailFailure
		}
		return nil, domainerror.NewEmailError(code, "mock send failure", m.FailError)
	}

	m.SentEmails = append(m.SentEmails, input)
	return &adapter.SendEmailResult{
		ProviderID: fmt.Sprintf("mock-%d", len(m.SentEmails)),
	}, nil
}

// SetFailure configures the mock to fail with the given error.
func (m *MockEmailSender) SetFailure(err error, permanent bool) {
	m.FailError = err
	m.IsPermanent = permanent
}

var (
	_ adapter.EmailSender = (*ResendClient)(nil)
	_ adapter.EmailSender = (*MockEmailSender)(nil)
)
