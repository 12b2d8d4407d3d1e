package models

import "time"

// Session is the single live login of a user. A new login replaces it.
type Session struct {
	UserID       uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Token        string    `json:"-" gorm:"uniqueIndex;not null"`
	IssuedAt     time.Time `json:"issued_at"`
	LastActivity time.Time `json:"last_activity"`
}

type OTPPurpose string

const (
	OTPPurposeSignup OTPPurpose = "signup"
	OTPPurposeReset  OTPPurpose = "reset"
)

// OTPChallenge is the pending one-time code for an email, at most one per email
type OTPChallenge struct {
	Email     string     `gorm:"primaryKey"`
	Code      string     `gorm:"not null"`
	Purpose   OTPPurpose `gorm:"not null"`
	UserID    uint       `gorm:"not null"`
	UserName  string
	IssuedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// Expired reports whether the code is past its window at now
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
