package mailer

import (
	"context"
	"sync"
	"testing"
	"time"

	"cafeteria-api/config"
	"cafeteria-api/events"
	"cafeteria-api/logger"
	"cafeteria-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusCall struct {
	to, name string
	orderID  uint
	status   models.OrderStatus
}

type recorder struct {
	mu    sync.Mutex
	calls []statusCall
	sent  chan struct{}
}

func (r *recorder) SendOTP(context.Context, string, string, models.OTPPurpose) error { return nil }

func (r *recorder) SendOrderStatus(_ context.Context, to, name string, orderID uint, status models.OrderStatus) error {
	r.mu.Lock()
	r.calls = append(r.calls, statusCall{to, name, orderID, status})
	r.mu.Unlock()
	r.sent <- struct{}{}
	return nil
}

func TestOTPMessage(t *testing.T) {
	msg := otpMessage("a@cafe.com", "123456", models.OTPPurposeSignup)
	assert.Equal(t, "CafeteriaHub - Email Verification", msg.Subject)
	assert.Contains(t, msg.Body, "123456")
	assert.Contains(t, msg.Body, "10 minutes")

	reset := otpMessage("a@cafe.com", "654321", models.OTPPurposeReset)
	assert.Equal(t, "CafeteriaHub - Password Reset", reset.Subject)
}

func TestOrderStatusMessage(t *testing.T) {
	msg := orderStatusMessage("a@cafe.com", "Ann", 42, models.StatusReady)
	assert.Equal(t, "CafeteriaHub - Order Update #42", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Ann")
	assert.Contains(t, msg.Body, "ready for pickup")
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := NewSMTPMailer(config.SMTPConfig{Port: 587, SenderEmail: "x@y.z"}, logger.NewNop())
	assert.Error(t, err)

	m, err := NewSMTPMailer(config.SMTPConfig{Host: "smtp.local", Port: 587, SenderEmail: "x@y.z"}, logger.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNotifierSendsStatusUpdatesOnly(t *testing.T) {
	rec := &recorder{sent: make(chan struct{}, 4)}
	n := NewNotifier(rec, logger.NewNop())

	in := make(chan events.Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		n.Run(ctx, in)
		close(done)
	}()

	order := &models.Order{ID: 5, UserName: "Ann", UserEmail: "ann@cafe.com"}
	in <- events.Event{Type: events.TypeOrderCreated, Order: order, Status: models.StatusPending}
	in <- events.Event{Type: events.TypeOrderStatusUpdated, Order: order, Status: models.StatusConfirmed}

	select {
	case <-rec.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier did not send")
	}
	close(in)
	<-done

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.calls, 1)
	assert.Equal(t, statusCall{"ann@cafe.com", "Ann", 5, models.StatusConfirmed}, rec.calls[0])
}

func TestLogMailerNeverFails(t *testing.T) {
	m := NewLogMailer(logger.NewNop())
	assert.NoError(t, m.SendOTP(context.Background(), "a@cafe.com", "111111", models.OTPPurposeSignup))
	assert.NoError(t, m.SendOrderStatus(context.Background(), "a@cafe.com", "A", 1, models.StatusReady))
}
