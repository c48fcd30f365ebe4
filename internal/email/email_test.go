package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_Verification(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)

	msg, err := tpl.Verification("alice@example.com", VerifyVars{
		AppName:  "Splice API",
		Username: "alice",
		Link:     "http://localhost:3000/v1/verify-email?token=abc&x=<y>",
		TTL:      "48h0m0s",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Splice API")
	assert.Contains(t, msg.TextBody, "token=abc&x=<y>")
	// html/template escapa el link.
	assert.NotContains(t, msg.HTMLBody, "<y>")
	assert.Contains(t, msg.HTMLBody, "verify-email?token=abc")
}

func TestLogSender(t *testing.T) {
	s := NewLogSender()
	require.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipient)
	require.NoError(t, s.Send(context.Background(), Message{To: "a@x.com", Subject: "hi"}))
	assert.Len(t, s.Sent(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: "a@x.com"}), context.Canceled)
}

func TestSMTPSender_Defaults(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com"})
	assert.Equal(t, 587, s.cfg.Port)
	assert.Equal(t, "auto", s.cfg.TLSMode)
	require.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipient)
}
