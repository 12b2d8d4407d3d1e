package events

import (
	"context"
	"errors"
	"time"

	"cafeteria-api/models"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusUpdated = "order.status.updated"
)

// Event is published after an order mutation has committed.
type Event struct {
	Type           string             `json:"type"`
	OrderID        uint               `json:"order_id"`
	UserID         uint               `json:"user_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	Order          *models.Order      `json:"order,omitempty"`
	At             time.Time          `json:"at"`
}

// Subject is the NATS subject the event travels on
func (e Event) Subject() string {
	return "cafeteria." + e.Type
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Fanout delivers each event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
