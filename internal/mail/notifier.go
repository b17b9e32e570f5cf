// Package mail delivers password-reset codes to users.
package mail

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/food-review/internal/config"
)

const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderLog    = "log"
)

const (
	placeholderEmail = "{{TO_EMAIL_ADDRESS}}"
	placeholderOTP   = "{{INSERT_OTP}}"
)

var ErrNotConfigured = errors.New("mail notifier is not configured")

//go:embed templates/otp.html
var otpTemplate string

// Notifier sends one-time reset codes.
type Notifier interface {
	SendOTP(ctx context.Context, to, otp string) error
}

// RenderOTP substitutes the recipient and code into the reset template. Both
// values are HTML-escaped.
func RenderOTP(to, otp string) string {
	return strings.NewReplacer(
		placeholderEmail, html.EscapeString(to),
		placeholderOTP, html.EscapeString(otp),
	).Replace(otpTemplate)
}

// NewNotifier builds the notifier selected by cfg.Provider. Incomplete
// settings for the selected provider fail at startup.
func NewNotifier(cfg *config.MailConfig, log *zap.Logger) (Notifier, error) {
	switch cfg.Provider {
	case ProviderSMTP:
		if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
			return nil, fmt.Errorf("%w: smtp needs host, port and from", ErrNotConfigured)
		}
		n, err := NewSMTPNotifier(cfg)
		if err != nil {
			return nil, err
		}
		return n, nil
	case ProviderResend:
		if cfg.ResendAPIKey == "" || cfg.From == "" {
			return nil, fmt.Errorf("%w: resend needs an api key and from", ErrNotConfigured)
		}
		return NewResendNotifier(cfg), nil
	case ProviderLog, "":
		return NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNotConfigured, cfg.Provider)
	}
}

func subject(cfg *config.MailConfig) string {
	if cfg.Subject == "" {
		return "Your password reset code"
	}
	return cfg.Subject
}
