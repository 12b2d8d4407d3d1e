package models

import "time"

// OrderStatus represents all possible states of a cafeteria order
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled,
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type Order struct {
	ID                  uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID              uint          `json:"user_id" gorm:"not null;index"`
	UserName            string        `json:"user_name"`  // snapshot
	UserEmail           string        `json:"user_email"` // snapshot
	Items               []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount         float64       `json:"total_amount" gorm:"not null"`
	Status              OrderStatus   `json:"status" gorm:"not null;index;default:'PENDING'"`
	OrderDate           time.Time     `json:"order_date" gorm:"not null;index"`
	EstimatedTime       time.Time     `json:"estimated_time"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	PaymentStatus       PaymentStatus `json:"payment_status" gorm:"not null;default:'PENDING'"`
	CreatedAt           time.Time     `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt           time.Time     `json:"updated_at" gorm:"autoUpdateTime:false"`
}

type OrderItem struct {
	ID                     uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID                uint    `json:"order_id" gorm:"not null;index"`
	MenuItemID             uint    `json:"menu_item_id" gorm:"not null"`
	MenuItemName           string  `json:"menu_item_name"` // snapshot name
	Quantity               int     `json:"quantity" gorm:"not null"`
	UnitPrice              float64 `json:"unit_price" gorm:"not null"` // snapshot price at time of order
	PreparationTimeMinutes int     `json:"preparation_time_minutes"`   // snapshot prep time
	SpecialInstructions    string  `json:"special_instructions,omitempty"`
}

// Subtotal is the line's contribution to the order total
func (i OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime:false"`
}
