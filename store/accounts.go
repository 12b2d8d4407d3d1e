package store

import (
	"errors"
	"time"

	"cafeteria-api/apperr"
	"cafeteria-api/models"

	"gorm.io/gorm"
)

// ── Users ───────────────────────────────────────────────────────────────────

func (t *Tx) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := t.db.First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.With(apperr.ErrUserNotFound, "", "user %d not found", id)
		}
		return nil, err
	}
	return &user, nil
}

func (t *Tx) UserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := t.db.Where("email = ?", email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.With(apperr.ErrUserNotFound, email, "user not found")
		}
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether a user already owns email
func (t *Tx) EmailTaken(email string) (bool, error) {
	var n int64
	if err := t.db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *Tx) CreateUser(user *models.User) error {
	err := t.db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.With(apperr.ErrDuplicateEmail, user.Email, "email already registered")
	}
	return err
}

func (t *Tx) SaveUser(user *models.User) error {
	return t.db.Save(user).Error
}

// Users lists users by id, optionally filtered by role
func (t *Tx) Users(role models.UserRole) ([]models.User, error) {
	var users []models.User
	q := t.db.Order("id")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the total and active user counts
func (t *Tx) CountUsers() (total, active int64, err error) {
	if err = t.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = t.db.Model(&models.User{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// ── Sessions ────────────────────────────────────────────────────────────────

// PutSession opens or overwrites the user's session
func (t *Tx) PutSession(session *models.Session) error {
	return t.db.Save(session).Error
}

func (t *Tx) SessionByUser(userID uint) (*models.Session, error) {
	var session models.Session
	if err := t.db.Where("user_id = ?", userID).First(&session).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.With(apperr.ErrUnauthenticated, "", "no active session")
		}
		return nil, err
	}
	return &session, nil
}

func (t *Tx) TouchSession(userID uint, at time.Time) error {
	return t.db.Model(&models.Session{}).Where("user_id = ?", userID).Update("last_activity", at).Error
}

// DeleteSession is idempotent
func (t *Tx) DeleteSession(userID uint) error {
	return t.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

// ── OTP challenges ──────────────────────────────────────────────────────────

// PutChallenge replaces any live challenge for the same email
func (t *Tx) PutChallenge(challenge *models.OTPChallenge) error {
	if err := t.DeleteChallenge(challenge.Email); err != nil {
		return err
	}
	return t.db.Create(challenge).Error
}

func (t *Tx) Challenge(email string) (*models.OTPChallenge, error) {
	var challenge models.OTPChallenge
	if err := t.db.Where("email = ?", email).First(&challenge).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.With(apperr.ErrNoChallenge, email, "no verification code was requested for %s", email)
		}
		return nil, err
	}
	return &challenge, nil
}

func (t *Tx) DeleteChallenge(email string) error {
	return t.db.Where("email = ?", email).Delete(&models.OTPChallenge{}).Error
}
