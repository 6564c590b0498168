package email

import (
	"context"
	"fmt"
	"time"

	"tourbook/pkg/logger"
)

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message. Implementations do not retry.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type Config struct {
	Provider  string // smtp, sendgrid, log
	FromEmail string
	FromName  string
	Timeout   time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	SendGridAPIKey string
}

func NewSender(cfg *Config, log *logger.Logger) (Sender, error) {
	switch cfg.Provider {
	case "smtp", "":
		return NewSMTPSender(cfg), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("email: sendgrid provider requires an API key")
		}
		return NewSendGridSender(cfg), nil
	case "log":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("email: unsupported provider %q", cfg.Provider)
	}
}

func (c *Config) from() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
}
