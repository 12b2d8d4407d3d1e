package mailer

import (
	"context"
	"fmt"

	"cafeteria-api/config"
	"cafeteria-api/logger"
	"cafeteria-api/models"

	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers mail through a gomail dialer.
type SMTPMailer struct {
	cfg config.SMTPConfig
	log logger.Logger
	d   *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig, log logger.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}
	return &SMTPMailer{
		cfg: cfg,
		log: log,
		d:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (s *SMTPMailer) SendOTP(ctx context.Context, to, code string, purpose models.OTPPurpose) error {
	return s.send(ctx, otpMessage(to, code, purpose))
}

func (s *SMTPMailer) SendOrderStatus(ctx context.Context, to, name string, orderID uint, status models.OrderStatus) error {
	return s.send(ctx, orderStatusMessage(to, name, orderID, status))
}

func (s *SMTPMailer) send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.SenderEmail, s.cfg.SenderName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	done := make(chan error, 1)
	go func() {
		done <- s.d.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		s.log.Warnf("email to %s (subject: %s) cancelled or timed out: %v", msg.To, msg.Subject, ctx.Err())
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	}
	s.log.Infof("email sent to %s, subject: %s", msg.To, msg.Subject)
	return nil
}
