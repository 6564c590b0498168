package email

import (
	"context"

	"tourbook/pkg/logger"
)

// logSender writes messages to the log instead of delivering them.
type logSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(_ context.Context, msg *Message) error {
	s.log.WithFields(map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Text)
	return nil
}
