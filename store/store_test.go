package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cafeteria-api/apperr"
	"cafeteria-api/config"
	"cafeteria-api/models"
	"cafeteria-api/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := config.OpenDB(config.DatabaseConfig{DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return store.New(db, time.Second)
}

func createUser(t *testing.T, s *store.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test", Email: email, PasswordHash: "x", Role: models.RoleEmployee, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, s.Write(context.Background(), func(tx *store.Tx) error {
		return tx.CreateUser(u)
	}))
	return u
}

func createItem(t *testing.T, s *store.Store, name string, price float64) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{Name: name, Price: price, Category: "Main", IsAvailable: true, PreparationTimeMinutes: 10, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, s.Write(context.Background(), func(tx *store.Tx) error {
		return tx.CreateMenuItem(item)
	}))
	return item
}

func TestIDsAreStrictlyIncreasing(t *testing.T) {
	s := newStore(t)

	a := createUser(t, s, "a@cafe.com")
	b := createUser(t, s, "b@cafe.com")
	assert.Greater(t, b.ID, a.ID)

	x := createItem(t, s, "Soup", 4)
	y := createItem(t, s, "Bread", 2)
	assert.Greater(t, y.ID, x.ID)

	// ids are not reused after a delete
	require.NoError(t, s.Write(context.Background(), func(tx *store.Tx) error {
		return tx.DeleteMenuItem(y.ID)
	}))
	z := createItem(t, s, "Tea", 1)
	assert.Greater(t, z.ID, y.ID)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newStore(t)
	createUser(t, s, "dup@cafe.com")

	err := s.Write(context.Background(), func(tx *store.Tx) error {
		return tx.CreateUser(&models.User{Name: "Other", Email: "dup@cafe.com", PasswordHash: "y", Role: models.RoleEmployee})
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrDuplicateEmail))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestWriteRollsBackOnError(t *testing.T) {
	s := newStore(t)
	boom := errors.New("boom")

	err := s.Write(context.Background(), func(tx *store.Tx) error {
		if err := tx.CreateMenuItem(&models.MenuItem{Name: "Ghost", Price: 1, PreparationTimeMinutes: 1}); err != nil {
			return err
		}
		return boom
	})
	require.Error(t, err)

	var items []models.MenuItem
	require.NoError(t, s.Read(context.Background(), func(tx *store.Tx) error {
		var err error
		items, err = tx.MenuItems()
		return err
	}))
	assert.Empty(t, items)
}

func TestWriteWithCancelledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Write(ctx, func(tx *store.Tx) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrStorageUnavailable))
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}

func TestPutChallengeOverwrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, code := range []string{"111111", "222222"} {
		require.NoError(t, s.Write(ctx, func(tx *store.Tx) error {
			return tx.PutChallenge(&models.OTPChallenge{
				Email: "c@cafe.com", Code: code, Purpose: models.OTPPurposeSignup, UserID: 1,
				IssuedAt: t0, ExpiresAt: t0.Add(10 * time.Minute),
			})
		}))
	}

	var ch *models.OTPChallenge
	require.NoError(t, s.Read(ctx, func(tx *store.Tx) error {
		var err error
		ch, err = tx.Challenge("c@cafe.com")
		return err
	}))
	assert.Equal(t, "222222", ch.Code)

	err := s.Read(ctx, func(tx *store.Tx) error {
		_, err := tx.Challenge("nobody@cafe.com")
		return err
	})
	assert.True(t, errors.Is(err, apperr.ErrNoChallenge))
}

func TestSessionLastLoginWins(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "s@cafe.com")

	for _, tok := range []string{"first", "second"} {
		require.NoError(t, s.Write(ctx, func(tx *store.Tx) error {
			return tx.PutSession(&models.Session{UserID: u.ID, Token: tok, IssuedAt: t0, LastActivity: t0})
		}))
	}

	var sess *models.Session
	require.NoError(t, s.Read(ctx, func(tx *store.Tx) error {
		var err error
		sess, err = tx.SessionByUser(u.ID)
		return err
	}))
	assert.Equal(t, "second", sess.Token)

	require.NoError(t, s.Write(ctx, func(tx *store.Tx) error { return tx.DeleteSession(u.ID) }))
	require.NoError(t, s.Write(ctx, func(tx *store.Tx) error { return tx.DeleteSession(u.ID) }))

	err := s.Read(ctx, func(tx *store.Tx) error {
		_, err := tx.SessionByUser(u.ID)
		return err
	})
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}

func TestDeleteMenuItemKeepsOrders(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "o@cafe.com")
	item := createItem(t, s, "Burger", 10)

	order := &models.Order{
		UserID: u.ID, UserName: u.Name, UserEmail: u.Email,
		Items:       []models.OrderItem{{MenuItemID: item.ID, MenuItemName: item.Name, Quantity: 2, UnitPrice: 10, PreparationTimeMinutes: 10}},
		TotalAmount: 20, Status: models.StatusPending, PaymentStatus: models.PaymentPending,
		OrderDate: t0, EstimatedTime: t0.Add(20 * time.Minute), CreatedAt: t0, UpdatedAt: t0,
	}
	require.NoError(t, s.Write(ctx, func(tx *store.Tx) error { return tx.CreateOrder(order, u.ID, "placed") }))
	require.NoError(t, s.Write(ctx, func(tx *store.Tx) error { return tx.DeleteMenuItem(item.ID) }))

	err := s.Write(ctx, func(tx *store.Tx) error { return tx.DeleteMenuItem(item.ID) })
	assert.True(t, errors.Is(err, apperr.ErrMenuItemNotFound))

	var got *models.Order
	require.NoError(t, s.Read(ctx, func(tx *store.Tx) error {
		var err error
		got, err = tx.Order(order.ID)
		return err
	}))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Burger", got.Items[0].MenuItemName)
	assert.Equal(t, 20.0, got.TotalAmount)
}

func TestOrdersNewestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "n@cafe.com")

	dates := []time.Time{t0, t0.Add(time.Hour), t0}
	for _, d := range dates {
		order := &models.Order{
			UserID: u.ID, TotalAmount: 1, Status: models.StatusPending, PaymentStatus: models.PaymentPending,
			Items:     []models.OrderItem{{MenuItemID: 1, MenuItemName: "x", Quantity: 1, UnitPrice: 1}},
			OrderDate: d, CreatedAt: d, UpdatedAt: d,
		}
		require.NoError(t, s.Write(ctx, func(tx *store.Tx) error { return tx.CreateOrder(order, u.ID, "") }))
	}

	var orders []models.Order
	require.NoError(t, s.Read(ctx, func(tx *store.Tx) error {
		var err error
		orders, err = tx.Orders(store.OrderFilter{UserID: u.ID})
		return err
	}))
	require.Len(t, orders, 3)
	assert.Equal(t, []uint{2, 3, 1}, []uint{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestCountOrdersRevenueFromDeliveredOnly(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	statuses := map[models.OrderStatus]float64{
		models.StatusDelivered: 12.99,
		models.StatusPending:   7.5,
		models.StatusCancelled: 100,
		models.StatusPreparing: 3,
	}
	for status, total := range statuses {
		order := &models.Order{UserID: 1, TotalAmount: total, Status: status, PaymentStatus: models.PaymentPending, OrderDate: t0}
		require.NoError(t, s.Write(ctx, func(tx *store.Tx) error { return tx.CreateOrder(order, 1, "") }))
	}

	var counts store.OrderCounts
	require.NoError(t, s.Read(ctx, func(tx *store.Tx) error {
		var err error
		counts, err = tx.CountOrders()
		return err
	}))
	assert.Equal(t, int64(4), counts.Total)
	assert.Equal(t, int64(2), counts.Pending)
	assert.Equal(t, int64(1), counts.Completed)
	assert.InDelta(t, 12.99, counts.Revenue, 1e-9)
}

func TestSeedDefaultsOnlyOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var seeded bool
	require.NoError(t, s.Write(ctx, func(tx *store.Tx) error {
		var err error
		seeded, err = tx.SeedDefaults(t0, "hash")
		return err
	}))
	assert.True(t, seeded)

	require.NoError(t, s.Write(ctx, func(tx *store.Tx) error {
		var err error
		seeded, err = tx.SeedDefaults(t0, "hash")
		return err
	}))
	assert.False(t, seeded)

	require.NoError(t, s.Read(ctx, func(tx *store.Tx) error {
		items, err := tx.MenuItems()
		if err != nil {
			return err
		}
		assert.Len(t, items, 5)
		assert.Equal(t, "Classic Burger", items[0].Name)
		assert.Equal(t, []string{"beef patty", "lettuce", "tomato", "special sauce", "bun"}, items[0].Ingredients)
		return nil
	}))
}

func TestSnapshotReplacesEverything(t *testing.T) {
	src := newStore(t)
	ctx := context.Background()
	u := createUser(t, src, "snap@cafe.com")
	item := createItem(t, src, "Pasta", 9.5)
	require.NoError(t, src.Write(ctx, func(tx *store.Tx) error {
		item.IsAvailable = false
		item.Ingredients = []string{"b", "a"}
		return tx.SaveMenuItem(item)
	}))
	order := &models.Order{
		UserID: u.ID, TotalAmount: 19, Status: models.StatusReady, PaymentStatus: models.PaymentPending, OrderDate: t0,
		Items: []models.OrderItem{
			{MenuItemID: item.ID, MenuItemName: "Pasta", Quantity: 1, UnitPrice: 9.5},
			{MenuItemID: item.ID, MenuItemName: "Pasta", Quantity: 1, UnitPrice: 9.5, SpecialInstructions: "extra cheese"},
		},
	}
	require.NoError(t, src.Write(ctx, func(tx *store.Tx) error { return tx.CreateOrder(order, u.ID, "") }))

	var snap *store.Snapshot
	require.NoError(t, src.Read(ctx, func(tx *store.Tx) error {
		var err error
		snap, err = tx.Export(t0)
		return err
	}))
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "x", snap.Users[0].PasswordHash)

	dst := newStore(t)
	createUser(t, dst, "stale@cafe.com")
	require.NoError(t, dst.Write(ctx, func(tx *store.Tx) error { return tx.Import(snap) }))

	require.NoError(t, dst.Read(ctx, func(tx *store.Tx) error {
		users, err := tx.Users("")
		if err != nil {
			return err
		}
		require.Len(t, users, 1)
		assert.Equal(t, "snap@cafe.com", users[0].Email)
		assert.Equal(t, "x", users[0].PasswordHash)

		got, err := tx.MenuItem(item.ID)
		if err != nil {
			return err
		}
		assert.False(t, got.IsAvailable)
		assert.Equal(t, []string{"b", "a"}, got.Ingredients)

		o, err := tx.Order(order.ID)
		if err != nil {
			return err
		}
		require.Len(t, o.Items, 2)
		assert.Equal(t, "extra cheese", o.Items[1].SpecialInstructions)
		assert.Equal(t, models.StatusReady, o.Status)
		return nil
	}))
}
