package config

import "time"

type EmailConfig struct {
	Provider  string          `yaml:"provider"` // smtp, sendgrid, log
	FromEmail string          `yaml:"from_email"`
	FromName  string          `yaml:"from_name"`
	Timeout   time.Duration   `yaml:"timeout"`
	SMTP      *SMTPConfig     `yaml:"smtp"`
	SendGrid  *SendGridConfig `yaml:"sendgrid"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SendGridConfig struct {
	APIKey string `yaml:"api_key"`
}

func loadEmailConfig() *EmailConfig {
	return &EmailConfig{
		Provider:  getEnv("EMAIL_PROVIDER", "smtp"),
		FromEmail: getEnv("EMAIL_FROM", "noreply@tourbook.io"),
		FromName:  getEnv("EMAIL_FROM_NAME", "Tourbook"),
		Timeout:   getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
		SMTP: &SMTPConfig{
			Host:     getEnv("EMAIL_HOST", "smtp.mailtrap.io"),
			Port:     getEnvAsInt("EMAIL_PORT", 2525),
			Username: getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASSW", ""),
		},
		SendGrid: &SendGridConfig{
			APIKey: getEnv("SENDGRID_API_KEY", ""),
		},
	}
}
