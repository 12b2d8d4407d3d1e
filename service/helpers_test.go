package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"cafeteria-api/config"
	"cafeteria-api/events"
	"cafeteria-api/logger"
	"cafeteria-api/metrics"
	"cafeteria-api/models"
	"cafeteria-api/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentOTP struct {
	code    string
	purpose models.OTPPurpose
}

type fakeMailer struct {
	mu   sync.Mutex
	otps map[string]sentOTP
	wait func()
}

func (m *fakeMailer) SendOTP(_ context.Context, to, code string, purpose models.OTPPurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[to] = sentOTP{code: code, purpose: purpose}
	return nil
}

func (m *fakeMailer) SendOrderStatus(context.Context, string, string, uint, models.OrderStatus) error {
	return nil
}

// last returns the newest code mailed to email once queued mail is delivered
func (m *fakeMailer) last(email string) sentOTP {
	if m.wait != nil {
		m.wait()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otps[email]
}

type testEnv struct {
	store     *store.Store
	clock     *fakeClock
	mail      *fakeMailer
	bus       *events.Bus
	metrics   *metrics.Metrics
	auth      *AuthService
	orders    *OrderService
	catalog   *CatalogService
	reporting *ReportingService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := config.OpenDB(config.DatabaseConfig{DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	env := &testEnv{
		store:   store.New(db, 2*time.Second),
		clock:   &fakeClock{now: t0},
		mail:    &fakeMailer{otps: make(map[string]sentOTP)},
		bus:     events.NewBus(logger.NewNop()),
		metrics: metrics.New("test"),
	}
	deps := Deps{
		Store:   env.store,
		Mailer:  env.mail,
		Events:  env.bus,
		Metrics: env.metrics,
		Log:     logger.NewNop(),
		Now:     env.clock.Now,
	}
	env.auth = NewAuthService(deps, config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		OTPTTL:     10 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	})
	env.mail.wait = env.auth.WaitForMail
	t.Cleanup(env.auth.Close)
	env.orders = NewOrderService(deps)
	env.catalog = NewCatalogService(deps)
	env.reporting = NewReportingService(deps)
	return env
}

// activeUser signs up and verifies an account, returning the verified user.
func (e *testEnv) activeUser(t *testing.T, name, email string, role models.UserRole) *models.User {
	t.Helper()
	ctx := context.Background()
	_, err := e.auth.Signup(ctx, SignupInput{Name: name, Email: email, Password: "secret1", Role: role})
	require.NoError(t, err)
	res, err := e.auth.VerifyOTP(ctx, email, e.mail.last(email).code)
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) menuItem(t *testing.T, name, price, prep string, available bool) *models.MenuItem {
	t.Helper()
	item, err := e.catalog.Create(context.Background(), MenuItemInput{
		Name:            name,
		Price:           Text(price),
		Category:        "Main Course",
		PreparationTime: Text(prep),
		IsAvailable:     &available,
	})
	require.NoError(t, err)
	return item
}
