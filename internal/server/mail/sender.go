package mail

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/config"
	gomail "github.com/wneessen/go-mail"
)

// Sender delivers a templated email. data fills the template placeholders.
type Sender interface {
	Send(ctx context.Context, to, templateID string, data map[string]any) error
}

// NewSender returns an SMTPSender when an SMTP host is configured and a
// LogSender otherwise.
func NewSender(cfg *config.Config, log logging.Logger) (Sender, error) {
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	if cfg.SMTPHost == "" {
		return NewLogSender(r, log), nil
	}
	return NewSMTPSender(r, cfg)
}

// dialAndSend is a seam for testing gomail.Client.DialAndSendWithContext.
var dialAndSend = func(ctx context.Context, c *gomail.Client, msgs ...*gomail.Msg) error {
	return c.DialAndSendWithContext(ctx, msgs...)
}

// SMTPSender sends multipart (text + HTML) messages through an SMTP relay.
type SMTPSender struct {
	renderer *Renderer
	client   *gomail.Client
	from     string
}

func NewSMTPSender(r *Renderer, cfg *config.Config) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUser),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{renderer: r, client: client, from: cfg.EmailFrom}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, templateID string, data map[string]any) error {
	rendered, err := s.renderer.Render(to, templateID, data)
	if err != nil {
		return err
	}
	msg, err := s.newMsg(rendered)
	if err != nil {
		return err
	}
	if err := dialAndSend(ctx, s.client, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) newMsg(m *Message) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Text)
	msg.AddAlternativeString(gomail.TypeTextHTML, m.HTML)
	return msg, nil
}

// LogSender writes rendered messages to the logger instead of sending them.
// It is used in development when no SMTP relay is configured.
type LogSender struct {
	renderer *Renderer
	log      logging.Logger
}

func NewLogSender(r *Renderer, log logging.Logger) *LogSender {
	return &LogSender{renderer: r, log: log.With("module", "mail")}
}

func (s *LogSender) Send(ctx context.Context, to, templateID string, data map[string]any) error {
	msg, err := s.renderer.Render(to, templateID, data)
	if err != nil {
		return err
	}
	s.log.Info(ctx, "email not sent, no SMTP relay configured",
		"to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
