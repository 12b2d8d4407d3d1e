package mailer

import (
	"context"
	"fmt"

	"cafeteria-api/models"
)

type Mailer interface {
	SendOTP(ctx context.Context, to, code string, purpose models.OTPPurpose) error
	SendOrderStatus(ctx context.Context, to, name string, orderID uint, status models.OrderStatus) error
}

// Message is a rendered plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

func otpMessage(to, code string, purpose models.OTPPurpose) Message {
	subject := "CafeteriaHub - Email Verification"
	intro := "Your OTP for email verification is: "
	if purpose == models.OTPPurposeReset {
		subject = "CafeteriaHub - Password Reset"
		intro = "Your OTP for resetting your password is: "
	}
	return Message{
		To:      to,
		Subject: subject,
		Body: intro + code +
			"\n\nThis OTP will expire in 10 minutes." +
			"\n\nIf you didn't request this, please ignore this email.",
	}
}

func orderStatusMessage(to, name string, orderID uint, status models.OrderStatus) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("CafeteriaHub - Order Update #%d", orderID),
		Body: fmt.Sprintf("Hi %s,\n\nYour order #%d status has been updated to: %s\n\n%s\n\nThank you for using CafeteriaHub!",
			name, orderID, status, statusLine(status)),
	}
}

func statusLine(status models.OrderStatus) string {
	switch status {
	case models.StatusConfirmed:
		return "Your order has been confirmed and is being prepared."
	case models.StatusPreparing:
		return "Your order is currently being prepared by our kitchen staff."
	case models.StatusReady:
		return "Your order is ready for pickup! Please come to the cafeteria counter."
	case models.StatusDelivered:
		return "Your order has been delivered. Enjoy your meal!"
	case models.StatusCancelled:
		return "Your order has been cancelled. If you have any questions, please contact us."
	default:
		return "Your order status has been updated."
	}
}
