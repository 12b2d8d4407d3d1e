package store

import (
	"time"

	"cafeteria-api/models"
)

// SnapshotUser carries the password hash so an import restores working logins.
type SnapshotUser struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// Snapshot is the portable form of the whole store. Timestamps encode as RFC 3339
// and list fields (ingredients, order lines) keep their order.
type Snapshot struct {
	ExportedAt time.Time                   `json:"exported_at"`
	Users      []SnapshotUser              `json:"users"`
	MenuItems  []models.MenuItem           `json:"menu_items"`
	Orders     []models.Order              `json:"orders"`
	History    []models.OrderStatusHistory `json:"history"`
}

func (t *Tx) Export(now time.Time) (*Snapshot, error) {
	snap := &Snapshot{ExportedAt: now}

	users, err := t.Users("")
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		snap.Users = append(snap.Users, SnapshotUser{User: u, PasswordHash: u.PasswordHash})
	}

	if snap.MenuItems, err = t.MenuItems(); err != nil {
		return nil, err
	}

	if err = t.db.Preload("Items", preloadItems).Order("id").Find(&snap.Orders).Error; err != nil {
		return nil, err
	}
	if err = t.db.Order("id").Find(&snap.History).Error; err != nil {
		return nil, err
	}
	return snap, nil
}

// Import replaces every user, menu item and order with the snapshot contents.
// Sessions and pending challenges are dropped.
func (t *Tx) Import(snap *Snapshot) error {
	wipe := []interface{}{
		&models.OrderStatusHistory{}, &models.OrderItem{}, &models.Order{},
		&models.MenuItem{}, &models.Session{}, &models.OTPChallenge{}, &models.User{},
	}
	for _, model := range wipe {
		if err := t.db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}

	for i := range snap.Users {
		u := snap.Users[i].User
		u.PasswordHash = snap.Users[i].PasswordHash
		if err := t.db.Create(&u).Error; err != nil {
			return err
		}
	}
	for i := range snap.MenuItems {
		if err := t.db.Create(&snap.MenuItems[i]).Error; err != nil {
			return err
		}
	}
	for i := range snap.Orders {
		if err := t.db.Create(&snap.Orders[i]).Error; err != nil {
			return err
		}
	}
	for i := range snap.History {
		if err := t.db.Create(&snap.History[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
