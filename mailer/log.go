package mailer

import (
	"context"

	"cafeteria-api/logger"
	"cafeteria-api/models"
)

// LogMailer stands in for SMTP in development. Codes are only visible at debug level.
type LogMailer struct {
	log logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (l *LogMailer) SendOTP(_ context.Context, to, code string, purpose models.OTPPurpose) error {
	l.log.Infof("smtp disabled: %s code for %s not emailed", purpose, to)
	l.log.Debugf("otp for %s: %s", to, code)
	return nil
}

func (l *LogMailer) SendOrderStatus(_ context.Context, to, _ string, orderID uint, status models.OrderStatus) error {
	l.log.Infof("smtp disabled: order #%d is now %s (would notify %s)", orderID, status, to)
	return nil
}
