package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/elskow/food-review/internal/config"
)

const smtpTimeout = 15 * time.Second

type smtpSendFunc func(ctx context.Context, msg *gomail.Msg) error

type SMTPNotifier struct {
	from    string
	subject string
	send    smtpSendFunc
}

func NewSMTPNotifier(cfg *config.MailConfig) (*SMTPNotifier, error) {
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(smtpTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPNotifier{
		from:    cfg.From,
		subject: subject(cfg),
		send: func(ctx context.Context, msg *gomail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, to, otp string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := n.message(to, otp)
	if err != nil {
		return err
	}

	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send otp email via smtp: %w", err)
	}
	return nil
}

// message builds the reset email. Header encoding of a non-ASCII subject is
// left to go-mail.
func (n *SMTPNotifier) message(to, otp string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(n.subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextHTML, RenderOTP(to, otp))
	return msg, nil
}
