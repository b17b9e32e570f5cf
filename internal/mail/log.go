package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier records outgoing reset mails instead of delivering them. It is
// meant for local development.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendOTP(_ context.Context, to, otp string) error {
	n.log.Info("otp email (not delivered)",
		zap.String("to", to),
		zap.Int("body_bytes", len(RenderOTP(to, otp))))
	return nil
}
