package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/pkg/logger"
)

func TestNewSender(t *testing.T) {
	log := logger.NewNop()

	s, err := NewSender(&Config{Provider: "log"}, log)
	require.NoError(t, err)
	assert.IsType(t, &logSender{}, s)

	s, err = NewSender(&Config{Provider: "smtp"}, log)
	require.NoError(t, err)
	assert.IsType(t, &smtpSender{}, s)

	_, err = NewSender(&Config{Provider: "sendgrid"}, log)
	assert.Error(t, err)

	s, err = NewSender(&Config{Provider: "sendgrid", SendGridAPIKey: "SG.key"}, log)
	require.NoError(t, err)
	assert.IsType(t, &sendGridSender{}, s)

	_, err = NewSender(&Config{Provider: "pigeon"}, log)
	assert.Error(t, err)
}

func TestSMTPBuild(t *testing.T) {
	s := &smtpSender{cfg: &Config{FromEmail: "noreply@tourbook.io", FromName: "Tourbook"}}

	raw := string(s.build(&Message{
		To:      "laura@example.com",
		ToName:  "Laura",
		Subject: "Your password reset token (valid for 10 min)",
		Text:    "Forgot your password?",
	}))

	assert.True(t, strings.HasPrefix(raw, "From: Tourbook <noreply@tourbook.io>\r\n"))
	assert.Contains(t, raw, "To: Laura <laura@example.com>\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nForgot your password?"))
}

func TestLogSenderNeverFails(t *testing.T) {
	s := NewLogSender(logger.NewNop())
	assert.NoError(t, s.Send(context.Background(), &Message{To: "a@b.c", Subject: "hi", Text: "body"}))
}
