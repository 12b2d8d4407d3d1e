package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cafeteria-api/apperr"
	"cafeteria-api/config"
	"cafeteria-api/models"
	"cafeteria-api/store"

	"golang.org/x/crypto/bcrypt"
)

const (
	mailTimeout = 30 * time.Second
	mailQueue   = 64
)

type SignupInput struct {
	Name       string          `json:"name" validate:"required"`
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=6"`
	Role       models.UserRole `json:"role" validate:"omitempty,oneof=ADMIN EMPLOYEE"`
	Department string          `json:"department"`
	Phone      string          `json:"phone"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// AuthResult is returned by every operation that opens a session
type AuthResult struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

// AuthService runs signup, OTP verification, login, password reset and
// session checks over the account tables.
type AuthService struct {
	deps   Deps
	cfg    config.AuthConfig
	tokens tokenIssuer

	outbox    chan otpMail
	pending   sync.WaitGroup
	closeOnce sync.Once
}

type otpMail struct {
	ctx     context.Context
	email   string
	code    string
	purpose models.OTPPurpose
}

func NewAuthService(deps Deps, cfg config.AuthConfig) *AuthService {
	deps = deps.withDefaults()
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 10 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	s := &AuthService{
		deps:   deps,
		cfg:    cfg,
		tokens: tokenIssuer{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, now: deps.Now},
		outbox: make(chan otpMail, mailQueue),
	}
	go s.deliver()
	return s
}

// WaitForMail blocks until every queued code has been handed to the mailer.
func (s *AuthService) WaitForMail() {
	s.pending.Wait()
}

// Close drains the mail queue and stops its worker. The service must not be
// used afterwards.
func (s *AuthService) Close() {
	s.closeOnce.Do(func() {
		s.pending.Wait()
		close(s.outbox)
	})
}

// ── Signup & verification ───────────────────────────────────────────────────

// Signup creates an inactive account and emails a verification code.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (msg string, err error) {
	defer func() { s.record("signup", err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if err := validateStruct(in); err != nil {
		return "", err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return "", err
	}
	code, err := generateOTP()
	if err != nil {
		return "", err
	}

	now := s.deps.Now()
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Department:   strings.TrimSpace(in.Department),
		Phone:        strings.TrimSpace(in.Phone),
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		taken, err := tx.EmailTaken(user.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperr.With(apperr.ErrDuplicateEmail, user.Email, "email %s is already registered", user.Email)
		}
		if err := tx.CreateUser(user); err != nil {
			return err
		}
		return tx.PutChallenge(s.challenge(user, code, models.OTPPurposeSignup, now))
	})
	if err != nil {
		return "", err
	}

	s.deps.Log.Infof("user %d signed up as %s, awaiting verification", user.ID, user.Role)
	s.sendOTP(ctx, user.Email, code, models.OTPPurposeSignup)
	return "User registered successfully. Please verify your email with the OTP sent.", nil
}

// VerifyOTP consumes the pending code for email, activating the account when
// the code was issued at signup, and opens a session.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (res *AuthResult, err error) {
	defer func() { s.record("verify_otp", err) }()

	email = strings.TrimSpace(email)
	now := s.deps.Now()
	var expired bool

	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		ch, err := s.liveChallenge(tx, email, now, &expired)
		if err != nil || expired {
			return err
		}
		if ch.Code != strings.TrimSpace(code) {
			return apperr.With(apperr.ErrInvalidCode, email, "invalid verification code")
		}

		user, err := tx.UserByID(ch.UserID)
		if err != nil {
			return err
		}
		msg := "OTP verified successfully"
		if ch.Purpose != models.OTPPurposeSignup && !user.IsActive {
			// only the signup code activates an account
			return apperr.With(apperr.ErrAccountNotActive, email, "account not verified, please verify your email first")
		}
		if ch.Purpose == models.OTPPurposeSignup {
			msg = "Account verified successfully"
			if !user.IsActive {
				user.IsActive = true
				user.UpdatedAt = now
				if err := tx.SaveUser(user); err != nil {
					return err
				}
			}
		}

		token, err := s.openSession(tx, user, now)
		if err != nil {
			return err
		}
		if err := tx.DeleteChallenge(email); err != nil {
			return err
		}
		res = &AuthResult{Token: token, User: user, Message: msg}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, expiredErr(email)
	}
	return res, nil
}

// ResendOTP issues a fresh code, for password reset when the account is
// already active and for verification otherwise.
func (s *AuthService) ResendOTP(ctx context.Context, email string) (msg string, err error) {
	defer func() { s.record("resend_otp", err) }()

	email = strings.TrimSpace(email)
	purpose, err := s.issue(ctx, email, func(u *models.User) models.OTPPurpose {
		if u.IsActive {
			return models.OTPPurposeReset
		}
		return models.OTPPurposeSignup
	})
	if err != nil {
		return "", err
	}
	s.deps.Log.Infof("resent %s code", purpose)
	return "OTP resent successfully", nil
}

// ── Login & sessions ────────────────────────────────────────────────────────

// Login checks the password of an active account and opens a session,
// replacing any previous one.
func (s *AuthService) Login(ctx context.Context, email, password string) (res *AuthResult, err error) {
	defer func() { s.record("login", err) }()

	email = strings.TrimSpace(email)
	var user *models.User
	err = s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		var err error
		user, err = tx.UserByEmail(email)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.With(apperr.ErrAccountNotActive, email, "account not verified, please verify your email first")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	now := s.deps.Now()
	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		// the account may have changed since the password check
		current, err := tx.UserByID(user.ID)
		if err != nil {
			return err
		}
		if !current.IsActive {
			return apperr.With(apperr.ErrAccountNotActive, email, "account not verified, please verify your email first")
		}
		if current.PasswordHash != user.PasswordHash {
			return apperr.ErrInvalidCredentials
		}
		token, err := s.openSession(tx, current, now)
		if err != nil {
			return err
		}
		res = &AuthResult{Token: token, User: current, Message: "Login successful"}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Logout ends the user's session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	err := s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		return tx.DeleteSession(userID)
	})
	s.record("logout", err)
	return err
}

// Authenticate resolves a bearer token to its user. The token must be the
// user's current session token; a newer login invalidates older tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.parse(token)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		sess, err := tx.SessionByUser(claims.UserID)
		if err != nil {
			return err
		}
		if sess.Token != token {
			return apperr.ErrUnauthenticated
		}
		if user, err = tx.UserByID(claims.UserID); err != nil || !user.IsActive {
			return apperr.ErrUnauthenticated
		}
		return tx.TouchSession(user.ID, s.deps.Now())
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ── Password reset ──────────────────────────────────────────────────────────

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (msg string, err error) {
	defer func() { s.record("forgot_password", err) }()

	email = strings.TrimSpace(email)
	if _, err := s.issue(ctx, email, func(*models.User) models.OTPPurpose { return models.OTPPurposeReset }); err != nil {
		return "", err
	}
	return "Password reset OTP sent to your email", nil
}

// ResetPassword replaces the password using a reset code and signs the user
// out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) (msg string, err error) {
	defer func() { s.record("reset_password", err) }()

	in.Email = strings.TrimSpace(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)
	if err := validateStruct(in); err != nil {
		return "", err
	}
	hash, err := s.hash(in.NewPassword)
	if err != nil {
		return "", err
	}

	now := s.deps.Now()
	var expired bool
	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		ch, err := tx.Challenge(in.Email)
		if apperr.CodeOf(err) == apperr.ErrNoChallenge.Code || (err == nil && ch.Purpose != models.OTPPurposeReset) {
			return apperr.With(apperr.ErrInvalidOrExpiredRequest, in.Email, "invalid or expired password reset request")
		}
		if err != nil {
			return err
		}
		if ch.Expired(now) {
			expired = true
			return tx.DeleteChallenge(in.Email)
		}
		if ch.Code != in.OTP {
			return apperr.With(apperr.ErrInvalidCode, in.Email, "invalid verification code")
		}

		user, err := tx.UserByID(ch.UserID)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		user.UpdatedAt = now
		if err := tx.SaveUser(user); err != nil {
			return err
		}
		if err := tx.DeleteChallenge(in.Email); err != nil {
			return err
		}
		return tx.DeleteSession(user.ID)
	})
	if err != nil {
		return "", err
	}
	if expired {
		return "", expiredErr(in.Email)
	}
	return "Password reset successfully", nil
}

// ── Users ───────────────────────────────────────────────────────────────────

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user *models.User
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		var err error
		user, err = tx.UserByID(userID)
		return err
	})
	return user, err
}

// ListUsers returns every user, or only those with role when it is set
func (s *AuthService) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if role != "" && !role.Valid() {
		return nil, apperr.Validation("role", "role must be one of: ADMIN EMPLOYEE")
	}
	var users []models.User
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		var err error
		users, err = tx.Users(role)
		return err
	})
	return users, err
}

// SeedDefaults installs the default accounts and menu into an empty store.
func (s *AuthService) SeedDefaults(ctx context.Context, password string) (bool, error) {
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	var seeded bool
	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		seeded, err = tx.SeedDefaults(s.deps.Now(), hash)
		return err
	})
	return seeded, err
}

// ── helpers ─────────────────────────────────────────────────────────────────

// issue replaces the challenge for an existing user's email and mails the code.
func (s *AuthService) issue(ctx context.Context, email string, purposeFor func(*models.User) models.OTPPurpose) (models.OTPPurpose, error) {
	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	now := s.deps.Now()
	var purpose models.OTPPurpose
	err = s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		user, err := tx.UserByEmail(email)
		if err != nil {
			return err
		}
		purpose = purposeFor(user)
		return tx.PutChallenge(s.challenge(user, code, purpose, now))
	})
	if err != nil {
		return "", err
	}
	s.sendOTP(ctx, email, code, purpose)
	return purpose, nil
}

// liveChallenge loads the challenge for email. An expired one is deleted and
// flagged so the deletion commits before the caller reports expiry.
func (s *AuthService) liveChallenge(tx *store.Tx, email string, now time.Time, expired *bool) (*models.OTPChallenge, error) {
	ch, err := tx.Challenge(email)
	if err != nil {
		return nil, err
	}
	if ch.Expired(now) {
		*expired = true
		return nil, tx.DeleteChallenge(email)
	}
	return ch, nil
}

func (s *AuthService) challenge(user *models.User, code string, purpose models.OTPPurpose, now time.Time) *models.OTPChallenge {
	return &models.OTPChallenge{
		Email:     user.Email,
		Code:      code,
		Purpose:   purpose,
		UserID:    user.ID,
		UserName:  user.Name,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.OTPTTL),
	}
}

func (s *AuthService) openSession(tx *store.Tx, user *models.User, now time.Time) (string, error) {
	token, err := s.tokens.issue(user)
	if err != nil {
		return "", err
	}
	err = tx.PutSession(&models.Session{
		UserID:       user.ID,
		Token:        token,
		IssuedAt:     now,
		LastActivity: now,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// sendOTP queues the code for delivery after commit. Codes go out in the
// order they were issued; a mail failure leaves the code valid for resend.
func (s *AuthService) sendOTP(ctx context.Context, email, code string, purpose models.OTPPurpose) {
	s.pending.Add(1)
	s.outbox <- otpMail{ctx: context.WithoutCancel(ctx), email: email, code: code, purpose: purpose}
}

func (s *AuthService) deliver() {
	for m := range s.outbox {
		ctx, cancel := context.WithTimeout(m.ctx, mailTimeout)
		if err := s.deps.Mailer.SendOTP(ctx, m.email, m.code, m.purpose); err != nil {
			s.deps.Log.Warnf("failed to email %s code: %v", m.purpose, err)
		}
		cancel()
		s.pending.Done()
	}
}

func (s *AuthService) record(event string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.CodeOf(err)
	}
	s.deps.Metrics.Auth(event, outcome)
}

func expiredErr(email string) error {
	return apperr.With(apperr.ErrOTPExpired, email, "verification code has expired, please request a new one")
}
