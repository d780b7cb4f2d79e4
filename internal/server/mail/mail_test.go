package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func testData() map[string]any {
	return map[string]any{
		"Username":  "alice",
		"Link":      "http://localhost:5173/verify-email?token=abc",
		"ExpiresIn": "1h0m0s",
	}
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	msg, err := r.Render("alice@x.com", TemplateVerifyEmail, testData())
	require.NoError(t, err)

	assert.Equal(t, "alice@x.com", msg.To)
	assert.Equal(t, "Verify your email address", msg.Subject)
	assert.Contains(t, msg.Text, "Hi alice,")
	assert.Contains(t, msg.Text, "(http://localhost:5173/verify-email?token=abc)")
	assert.Contains(t, msg.HTML, `<a href="http://localhost:5173/verify-email?token=abc">Verify my email</a>`)
	assert.Contains(t, msg.HTML, "<p>")
}

func TestRenderer_Errors(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render("a@x.com", "welcome", testData())
	assert.ErrorContains(t, err, "unknown email template")

	_, err = r.Render("a@x.com", TemplateResetPassword, map[string]any{"Username": "a"})
	assert.ErrorContains(t, err, "render template reset_password")
}

func TestNewSender_PicksImplementation(t *testing.T) {
	s, err := NewSender(&config.Config{}, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(&config.Config{SMTPHost: "smtp.local", SMTPPort: 587}, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)
}

func stubDialAndSend(t *testing.T, fn func(ctx context.Context, c *gomail.Client, msgs ...*gomail.Msg) error) {
	t.Helper()
	orig := dialAndSend
	t.Cleanup(func() { dialAndSend = orig })
	dialAndSend = fn
}

func TestSMTPSender_Send(t *testing.T) {
	var sent []*gomail.Msg
	stubDialAndSend(t, func(_ context.Context, c *gomail.Client, msgs ...*gomail.Msg) error {
		require.NotNil(t, c)
		sent = append(sent, msgs...)
		return nil
	})

	r, err := NewRenderer()
	require.NoError(t, err)
	s, err := NewSMTPSender(r, &config.Config{
		SMTPHost: "smtp.local", SMTPPort: 2525, SMTPUser: "u", SMTPPassword: "p",
		EmailFrom: "no-reply@carmodpicker.local",
	})
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), "bob@x.com", TemplateResetPassword, testData()))
	require.Len(t, sent, 1)
	msg := sent[0]

	to, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@x.com"}, to)
	assert.Equal(t, []string{"Reset your password"}, msg.GetGenHeader(gomail.HeaderSubject))

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "no-reply@carmodpicker.local")
	assert.Contains(t, raw.String(), "multipart/alternative")

	parts := msg.GetParts()
	require.Len(t, parts, 2)
	assert.Equal(t, gomail.TypeTextPlain, parts[0].GetContentType())
	assert.Equal(t, gomail.TypeTextHTML, parts[1].GetContentType())
	for _, p := range parts {
		body, err := p.GetContent()
		require.NoError(t, err)
		assert.Contains(t, string(body), "Choose a new password")
	}
}

func TestSMTPSender_Errors(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	s, err := NewSMTPSender(r, &config.Config{SMTPHost: "smtp.local", SMTPPort: 25, EmailFrom: "no-reply@carmodpicker.local"})
	require.NoError(t, err)

	stubDialAndSend(t, func(context.Context, *gomail.Client, ...*gomail.Msg) error { return errors.New("relay down") })
	err = s.Send(context.Background(), "bob@x.com", TemplateVerifyEmail, testData())
	assert.ErrorContains(t, err, "smtp send: relay down")

	stubDialAndSend(t, func(ctx context.Context, _ *gomail.Client, _ ...*gomail.Msg) error { return ctx.Err() })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Send(ctx, "bob@x.com", TemplateVerifyEmail, testData())
	assert.ErrorIs(t, err, context.Canceled)

	err = s.Send(context.Background(), "not an address", TemplateVerifyEmail, testData())
	assert.ErrorContains(t, err, "invalid recipient address")

	_, err = NewSMTPSender(r, &config.Config{SMTPHost: "", SMTPPort: 25})
	assert.ErrorContains(t, err, "smtp client")
}

func TestLogSender_Send(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	s := NewLogSender(r, logging.New(&buf, "info", "json"))

	require.NoError(t, s.Send(context.Background(), "alice@x.com", TemplateVerifyEmail, testData()))
	out := buf.String()
	assert.Contains(t, out, `"to":"alice@x.com"`)
	assert.Contains(t, out, `"subject":"Verify your email address"`)
	assert.Contains(t, out, `"module":"mail"`)

	assert.Error(t, s.Send(context.Background(), "alice@x.com", "nope", nil))
}
