package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"cafeteria-api/apperr"
	"cafeteria-api/events"
	"cafeteria-api/models"
	"cafeteria-api/statemachine"
	"cafeteria-api/store"
)

// Actor is the authenticated caller of an order command
type Actor struct {
	ID   uint
	Role models.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

type OrderService struct {
	deps Deps
}

func NewOrderService(deps Deps) *OrderService {
	return &OrderService{deps: deps.withDefaults()}
}

// CreateOrder prices the cart against the live catalog and stores a PENDING
// order. Nothing is written when any line fails.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, cart CartRequest) (*models.Order, error) {
	now := s.deps.Now()
	var order *models.Order

	err := s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		user, err := tx.UserByID(userID)
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(cart.Items))
		for _, l := range cart.Items {
			ids = append(ids, l.MenuItemID)
		}
		catalog, err := tx.MenuItemsByID(ids)
		if err != nil {
			return err
		}
		priced, err := PriceCart(catalog, cart.Items)
		if err != nil {
			return err
		}

		order = &models.Order{
			UserID:              user.ID,
			UserName:            user.Name,
			UserEmail:           user.Email,
			Items:               priced.Lines,
			TotalAmount:         priced.Total,
			Status:              models.StatusPending,
			OrderDate:           now,
			EstimatedTime:       priced.EstimatedAt(now),
			SpecialInstructions: strings.TrimSpace(cart.SpecialInstructions),
			PaymentStatus:       models.PaymentPending,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		return tx.CreateOrder(order, user.ID, "Order placed")
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.OrderCreated()
	s.deps.Log.Infof("order %d placed by user %d: %d line(s), total %.2f", order.ID, order.UserID, len(order.Items), order.TotalAmount)
	s.deps.publish(ctx, events.Event{
		Type:    events.TypeOrderCreated,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		Order:   order,
		At:      now,
	})
	return order, nil
}

// AdvanceStatus moves an order to target, which must be the single next step
// or CANCELLED where cancelling is allowed.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID uint, target models.OrderStatus, actor Actor) (*models.Order, error) {
	if !target.Valid() {
		return nil, apperr.Validation("status", "unknown order status %q", target)
	}
	return s.transition(ctx, orderID, target, actor, nil)
}

// CancelOrder cancels a PENDING or CONFIRMED order. Employees may only cancel their own.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	return s.transition(ctx, orderID, models.StatusCancelled, actor, func(o *models.Order) error {
		if !actor.IsAdmin() && o.UserID != actor.ID {
			return apperr.With(apperr.ErrForbidden, itoa(orderID), "you can only cancel your own orders")
		}
		return nil
	})
}

// NextStatus returns the next forward step, or nil when the order is finished
func (s *OrderService) NextStatus(current models.OrderStatus) *models.OrderStatus {
	return statemachine.NextStatus(current)
}

func (s *OrderService) transition(ctx context.Context, orderID uint, target models.OrderStatus, actor Actor, guard func(*models.Order) error) (*models.Order, error) {
	now := s.deps.Now()
	var (
		order *models.Order
		from  models.OrderStatus
	)

	err := s.deps.Store.Write(ctx, func(tx *store.Tx) error {
		var err error
		if order, err = tx.Order(orderID); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(order); err != nil {
				return err
			}
		}
		from = order.Status
		if err := statemachine.CanTransition(from, target); err != nil {
			return err
		}

		order.Status = target
		order.UpdatedAt = now
		switch target {
		case models.StatusConfirmed:
			order.EstimatedTime = now.Add(time.Duration(prepMinutes(order.Items)) * time.Minute)
		case models.StatusDelivered:
			order.PaymentStatus = models.PaymentPaid
		}
		if err := tx.SaveOrderState(order); err != nil {
			return err
		}
		return tx.AddHistory(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   target,
			ChangedBy:  actor.ID,
			Note:       "Status changed from " + string(from) + " to " + string(target),
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.OrderTransition(string(target))
	s.deps.Log.Infof("order %d: %s -> %s by user %d", order.ID, from, target, actor.ID)
	s.deps.publish(ctx, events.Event{
		Type:           events.TypeOrderStatusUpdated,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         target,
		PreviousStatus: from,
		Order:          order,
		At:             now,
	})
	return order, nil
}

// ── Queries ─────────────────────────────────────────────────────────────────

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order *models.Order
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		var err error
		order, err = tx.Order(id)
		return err
	})
	return order, err
}

func (s *OrderService) ByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.list(ctx, store.OrderFilter{UserID: userID})
}

func (s *OrderService) ByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Validation("status", "unknown order status %q", status)
	}
	return s.list(ctx, store.OrderFilter{Status: status})
}

func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, store.OrderFilter{})
}

// Today returns orders placed in [start of today, start of tomorrow) in the
// clock's location.
func (s *OrderService) Today(ctx context.Context) ([]models.Order, error) {
	now := s.deps.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	today := make([]models.Order, 0, len(all))
	for _, o := range all {
		if !o.OrderDate.Before(start) && o.OrderDate.Before(end) {
			today = append(today, o)
		}
	}
	return today, nil
}

// History returns the status audit trail of an order, oldest first
func (s *OrderService) History(ctx context.Context, orderID uint) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		if _, err := tx.Order(orderID); err != nil {
			return err
		}
		var err error
		history, err = tx.History(orderID)
		return err
	})
	return history, err
}

func (s *OrderService) list(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	err := s.deps.Store.Read(ctx, func(tx *store.Tx) error {
		var err error
		orders, err = tx.Orders(filter)
		return err
	})
	return orders, err
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
