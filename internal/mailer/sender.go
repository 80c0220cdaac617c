package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fdg312/weekplan/internal/config"
)

const (
	ModeLocal  = "local"
	ModeSMTP   = "smtp"
	ModeResend = "resend"
)

// Message is an email with a plain-text body and an optional HTML
// alternative.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

// NewSenderFromConfig builds the sender selected by EMAIL_SENDER_MODE.
func NewSenderFromConfig(cfg *config.Config, logger Logger) (Sender, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.EmailSenderMode))
	if mode == "" {
		mode = ModeLocal
	}

	switch mode {
	case ModeLocal:
		return NewLocalSender(logger), nil
	case ModeSMTP:
		if err := validateSMTP(cfg); err != nil {
			return nil, err
		}
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			UseTLS:   cfg.SMTPUseTLS,
		}), nil
	case ModeResend:
		if strings.TrimSpace(cfg.ResendAPIKey) == "" {
			return nil, errors.New("RESEND_API_KEY is required for EMAIL_SENDER_MODE=resend")
		}
		return NewResendSender(ResendConfig{
			APIKey: cfg.ResendAPIKey,
			From:   cfg.ResendFrom,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported EMAIL_SENDER_MODE=%q", mode)
	}
}

func validateSMTP(cfg *config.Config) error {
	switch {
	case strings.TrimSpace(cfg.SMTPHost) == "":
		return errors.New("SMTP_HOST is required for EMAIL_SENDER_MODE=smtp")
	case cfg.SMTPPort <= 0:
		return errors.New("SMTP_PORT must be greater than 0 for EMAIL_SENDER_MODE=smtp")
	case strings.TrimSpace(cfg.SMTPUsername) != "" && strings.TrimSpace(cfg.SMTPPassword) == "":
		return errors.New("SMTP_PASSWORD is required when SMTP_USERNAME is set")
	}
	if _, err := envelopeAddress(cfg.SMTPFrom); err != nil {
		return err
	}
	return nil
}
