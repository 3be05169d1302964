// Package templates renders the notification emails sent by the backend.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed *.html *.txt
var templateFS embed.FS

// Notice is a fully rendered email. Every template ships a subject, an HTML
// body and a plain text body; the subject is defined as "<name>.subject"
// inside the text file.
type Notice struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer executes the embedded templates.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	htmlTmpl, err := htmltemplate.ParseFS(templateFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML templates: %w", err)
	}

	textTmpl, err := texttemplate.ParseFS(templateFS, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}

	return &Renderer{
		html: htmlTmpl,
		text: textTmpl,
	}, nil
}

// Render executes the subject, HTML and text parts of the named template.
func (r *Renderer) Render(name string, data interface{}) (*Notice, error) {
	var subject, text bytes.Buffer
	if err := r.text.ExecuteTemplate(&subject, name+".subject", data); err != nil {
		return nil, fmt.Errorf("failed to render subject of %s: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return nil, fmt.Errorf("failed to render text body of %s: %w", name, err)
	}

	var html bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return nil, fmt.Errorf("failed to render HTML body of %s: %w", name, err)
	}

	return &Notice{
		Subject: strings.Join(strings.Fields(subject.String()), " "),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// FeedbackData contains data for the feedback notification template.
type FeedbackData struct {
	Message     string
	UserName    string
	UserEmail   string
	SubmittedAt string
}

// RenderFeedback renders the notification for one dashboard feedback message.
func (r *Renderer) RenderFeedback(data FeedbackData) (*Notice, error) {
	return r.Render("feedback", data)
}
