package mail

import (
	"context"
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/elskow/food-review/internal/config"
)

type resendSendFunc func(params *resend.SendEmailRequest) error

type ResendNotifier struct {
	send    resendSendFunc
	from    string
	subject string
}

func NewResendNotifier(cfg *config.MailConfig) *ResendNotifier {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &ResendNotifier{
		send: func(params *resend.SendEmailRequest) error {
			_, err := client.Emails.Send(params)
			return err
		},
		from:    cfg.From,
		subject: subject(cfg),
	}
}

func (n *ResendNotifier) SendOTP(ctx context.Context, to, otp string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := n.send(&resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: n.subject,
		Html:    RenderOTP(to, otp),
	})
	if err != nil {
		return fmt.Errorf("failed to send otp email via resend: %w", err)
	}
	return nil
}
