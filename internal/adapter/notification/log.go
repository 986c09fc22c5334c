package notification

import (
	"context"

	"github.com/api-sage/mini-bank-ledger/internal/logger"
)

// LogGateway records delivery intents without sending anything. It stands
// in when no mailer endpoint is configured, for local development. The
// message body carries the OTP and is never written to the log.
type LogGateway struct{}

func NewLogGateway() *LogGateway {
	return &LogGateway{}
}

func (g *LogGateway) Deliver(_ context.Context, address, subject, _ string) error {
	logger.Info("notification gateway delivery skipped, no mailer configured", logger.Fields{
		"address": address,
		"subject": subject,
	})
	return nil
}
