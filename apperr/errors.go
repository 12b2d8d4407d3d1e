package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error by who is at fault and how callers should react.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindExpired
	KindUnauthenticated
	KindForbidden
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExpired:
		return "expired"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is the single error type returned by the stores and engines.
// Two errors are considered the same (errors.Is) when their codes match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Subject identifies the offending entity (menu item name, id, email...).
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the caller may retry the operation with backoff.
func (e *Error) Retryable() bool { return e.Kind == KindUnavailable }

var (
	ErrValidation         = &Error{Kind: KindValidation, Code: "VALIDATION_FAILED", Message: "invalid input"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}
	ErrDuplicateEmail     = &Error{Kind: KindConflict, Code: "DUPLICATE_EMAIL", Message: "email already registered"}
	ErrAccountNotActive   = &Error{Kind: KindUnauthenticated, Code: "ACCOUNT_NOT_ACTIVE", Message: "account not verified, please verify your email first"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Code: "INVALID_CREDENTIALS", Message: "invalid email or password"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Code: "UNAUTHENTICATED", Message: "invalid or expired session"}
	ErrForbidden          = &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: "access denied"}

	ErrNoChallenge             = &Error{Kind: KindNotFound, Code: "NO_CHALLENGE", Message: "no verification code was requested for this email"}
	ErrOTPExpired              = &Error{Kind: KindExpired, Code: "OTP_EXPIRED", Message: "verification code has expired"}
	ErrInvalidCode             = &Error{Kind: KindValidation, Code: "INVALID_CODE", Message: "invalid verification code"}
	ErrInvalidOrExpiredRequest = &Error{Kind: KindValidation, Code: "INVALID_OR_EXPIRED_REQUEST", Message: "invalid or expired password reset request"}

	ErrMenuItemNotFound    = &Error{Kind: KindNotFound, Code: "MENU_ITEM_NOT_FOUND", Message: "menu item not found"}
	ErrMenuItemUnavailable = &Error{Kind: KindConflict, Code: "MENU_ITEM_UNAVAILABLE", Message: "menu item is currently unavailable"}
	ErrOrderNotFound       = &Error{Kind: KindNotFound, Code: "ORDER_NOT_FOUND", Message: "order not found"}
	ErrInvalidTransition   = &Error{Kind: KindConflict, Code: "INVALID_TRANSITION", Message: "invalid order status transition"}

	ErrStorageUnavailable = &Error{Kind: KindUnavailable, Code: "STORAGE_UNAVAILABLE", Message: "storage unavailable, retry later"}
)

// With copies a sentinel, replacing its message and recording the subject.
func With(base *Error, subject, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    base.Kind,
		Code:    base.Code,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
	}
}

// Validation builds a VALIDATION_FAILED error for the given field.
func Validation(field, format string, args ...interface{}) *Error {
	return With(ErrValidation, field, format, args...)
}

// Storage wraps a driver/ORM failure. Errors that already carry a code pass through.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	msg := ErrStorageUnavailable.Message
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "storage operation timed out, retry later"
	}
	return &Error{
		Kind:    KindUnavailable,
		Code:    ErrStorageUnavailable.Code,
		Message: msg,
		Err:     err,
	}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of err or "INTERNAL".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}

// SubjectOf returns the subject recorded on err, if any.
func SubjectOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Subject
	}
	return ""
}
