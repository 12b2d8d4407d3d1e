package service

import (
	"context"
	"strconv"
	"strings"

	"cafeteria-api/apperr"
	"cafeteria-api/models"
	"cafeteria-api/store"
)

// Statistics is the admin dashboard snapshot
type Statistics struct {
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	CompletedOrders int64   `json:"completed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	ActiveMenuItems int64   `json:"active_menu_items"`
	TotalUsers      int64   `json:"total_users"`
	ActiveUsers     int64   `json:"active_users"`
}

type SearchResult struct {
	MenuItems []models.MenuItem `json:"menu_items"`
	Orders    []models.Order    `json:"orders"`
}

// ReportingService answers read-only questions across users, menu and orders.
type ReportingService struct {
	deps Deps
}

func NewReportingService(deps Deps) *ReportingService {
	return &ReportingService{deps: deps.withDefaults()}
}

// Statistics counts everything inside one read so the numbers agree with each other.
func (s *ReportingService) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		counts, err := tx.CountOrders()
		if err != nil {
			return err
		}
		stats.TotalOrders = counts.Total
		stats.PendingOrders = counts.Pending
		stats.CompletedOrders = counts.Completed
		stats.TotalRevenue = counts.Revenue

		if stats.ActiveMenuItems, err = tx.CountAvailableMenuItems(); err != nil {
			return err
		}
		stats.TotalUsers, stats.ActiveUsers, err = tx.CountUsers()
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Search matches query case-insensitively against menu items (name,
// description, category, ingredients) and orders (customer name and email,
// order id, line item names). An empty query matches everything.
func (s *ReportingService) Search(ctx context.Context, query string) (*SearchResult, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	res := &SearchResult{MenuItems: []models.MenuItem{}, Orders: []models.Order{}}

	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		items, err := tx.MenuItems()
		if err != nil {
			return err
		}
		for _, item := range items {
			if menuItemMatches(item, term) {
				res.MenuItems = append(res.MenuItems, item)
			}
		}

		orders, err := tx.Orders(store.OrderFilter{})
		if err != nil {
			return err
		}
		for _, o := range orders {
			if orderMatches(o, term) {
				res.Orders = append(res.Orders, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func contains(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}

func menuItemMatches(item models.MenuItem, term string) bool {
	if contains(item.Name, term) || contains(item.Description, term) || contains(item.Category, term) {
		return true
	}
	for _, ing := range item.Ingredients {
		if contains(ing, term) {
			return true
		}
	}
	return false
}

func orderMatches(o models.Order, term string) bool {
	if contains(o.UserName, term) || contains(o.UserEmail, term) || strings.Contains(strconv.FormatUint(uint64(o.ID), 10), term) {
		return true
	}
	for _, line := range o.Items {
		if contains(line.MenuItemName, term) {
			return true
		}
	}
	return false
}

// ── Snapshot ────────────────────────────────────────────────────────────────

func (s *ReportingService) Export(ctx context.Context) (*store.Snapshot, error) {
	var snap *store.Snapshot
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		var err error
		snap, err = tx.Export(s.deps.Now())
		return err
	})
	return snap, err
}

// Import replaces all stored data with snap in a single write. Every session
// and pending code is dropped, so all users must log in again.
func (s *ReportingService) Import(ctx context.Context, snap *store.Snapshot) error {
	if snap == nil {
		return apperr.Validation("snapshot", "snapshot is required")
	}
	if err := checkSnapshot(snap); err != nil {
		return err
	}

	err := s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		return tx.Import(snap)
	})
	if err != nil {
		return err
	}
	s.deps.Log.Infof("imported snapshot: %d users, %d menu items, %d orders",
		len(snap.Users), len(snap.MenuItems), len(snap.Orders))
	return nil
}

// checkSnapshot applies the same rules a live write would: unique emails,
// finite positive prices, and orders whose lines add up to their total.
func checkSnapshot(snap *store.Snapshot) error {
	users := make(map[uint]bool, len(snap.Users))
	emails := make(map[string]bool, len(snap.Users))
	for _, u := range snap.Users {
		if u.Email == "" {
			return apperr.Validation("users", "user %d has no email", u.ID)
		}
		if emails[u.Email] {
			return apperr.With(apperr.ErrDuplicateEmail, u.Email, "snapshot contains %s twice", u.Email)
		}
		emails[u.Email] = true
	}
	for _, u := range snap.Users {
		if !u.Role.Valid() {
			return apperr.Validation("users", "user %d has unknown role %q", u.ID, u.Role)
		}
		users[u.ID] = true
	}

	for _, item := range snap.MenuItems {
		if checkPrice(item.Price) != nil {
			return apperr.Validation("menu_items", "menu item %d must have a finite positive price", item.ID)
		}
		if item.PreparationTimeMinutes <= 0 {
			return apperr.Validation("menu_items", "menu item %d has a non-positive preparation time", item.ID)
		}
	}

	orders := make(map[uint]bool, len(snap.Orders))
	for _, o := range snap.Orders {
		if err := checkSnapshotOrder(o, users); err != nil {
			return err
		}
		orders[o.ID] = true
	}
	for _, h := range snap.History {
		if !orders[h.OrderID] {
			return apperr.Validation("history", "history row %d refers to unknown order %d", h.ID, h.OrderID)
		}
		if !h.ToStatus.Valid() || (h.FromStatus != "" && !h.FromStatus.Valid()) {
			return apperr.Validation("history", "history row %d has an unknown status", h.ID)
		}
	}
	return nil
}

func checkSnapshotOrder(o models.Order, users map[uint]bool) error {
	if !users[o.UserID] {
		return apperr.Validation("orders", "order %d belongs to unknown user %d", o.ID, o.UserID)
	}
	if !o.Status.Valid() {
		return apperr.Validation("orders", "order %d has unknown status %q", o.ID, o.Status)
	}
	if !o.PaymentStatus.Valid() {
		return apperr.Validation("orders", "order %d has unknown payment status %q", o.ID, o.PaymentStatus)
	}
	if len(o.Items) == 0 {
		return apperr.Validation("orders", "order %d has no items", o.ID)
	}
	var total float64
	for _, line := range o.Items {
		if line.Quantity <= 0 {
			return apperr.Validation("orders", "order %d has a line with quantity %d", o.ID, line.Quantity)
		}
		if checkPrice(line.UnitPrice) != nil {
			return apperr.Validation("orders", "order %d has a line with an invalid unit price", o.ID)
		}
		total += line.Subtotal()
	}
	if roundCents(total) != roundCents(o.TotalAmount) {
		return apperr.Validation("orders", "order %d total %.2f does not match its lines (%.2f)",
			o.ID, o.TotalAmount, roundCents(total))
	}
	return nil
}
