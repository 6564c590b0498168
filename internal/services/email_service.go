package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tourbook/internal/models"
	"tourbook/pkg/email"
)

type EmailService interface {
	SendWelcome(ctx context.Context, user *models.User, url string) error
	SendPasswordReset(ctx context.Context, user *models.User, resetURL string, validFor time.Duration) error
}

type emailService struct {
	sender email.Sender
}

func NewEmailService(sender email.Sender) EmailService {
	return &emailService{sender: sender}
}

func (s *emailService) SendWelcome(ctx context.Context, user *models.User, url string) error {
	return s.sender.Send(ctx, &email.Message{
		To:      user.Email,
		ToName:  user.Name,
		Subject: "Welcome to the Tourbook family!",
		Text: fmt.Sprintf(
			"Hi %s,\n\nWelcome to Tourbook, we're glad to have you.\nUpload a profile photo and start exploring: %s\n",
			firstName(user.Name), url),
	})
}

func (s *emailService) SendPasswordReset(ctx context.Context, user *models.User, resetURL string, validFor time.Duration) error {
	minutes := int(validFor.Minutes())
	return s.sender.Send(ctx, &email.Message{
		To:      user.Email,
		ToName:  user.Name,
		Subject: fmt.Sprintf("Your password reset token (valid for %d min)", minutes),
		Text: fmt.Sprintf(
			"Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s\n"+
				"If you didn't forget your password, please ignore this email!",
			resetURL),
	})
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
