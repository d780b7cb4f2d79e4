// Package mail renders and delivers the transactional emails of the
// verify-email and reset-password flows.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/yuin/goldmark"
)

// Template ids.
const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
)

var subjects = map[string]string{
	TemplateVerifyEmail:   "Verify your email address",
	TemplateResetPassword: "Reset your password",
}

//go:embed templates/*.md
var templateFS embed.FS

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Renderer expands Markdown templates with dynamic data and converts the
// result to HTML. The Markdown itself is used as the plain-text part.
type Renderer struct {
	templates map[string]*template.Template
	md        goldmark.Markdown
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template), md: goldmark.New()}
	for id := range subjects {
		t, err := template.New(id).Option("missingkey=error").ParseFS(templateFS, "templates/"+id+".md")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", id, err)
		}
		r.templates[id] = t.Lookup(id + ".md")
	}
	return r, nil
}

// Render produces the message for templateID addressed to to.
func (r *Renderer) Render(to, templateID string, data map[string]any) (*Message, error) {
	t, ok := r.templates[templateID]
	if !ok {
		return nil, fmt.Errorf("unknown email template %q", templateID)
	}

	var text bytes.Buffer
	if err := t.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", templateID, err)
	}

	var html bytes.Buffer
	if err := r.md.Convert(text.Bytes(), &html); err != nil {
		return nil, fmt.Errorf("convert template %s: %w", templateID, err)
	}

	return &Message{To: to, Subject: subjects[templateID], Text: text.String(), HTML: html.String()}, nil
}
