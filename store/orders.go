package store

import (
	"math"
	"sort"

	"cafeteria-api/apperr"
	"cafeteria-api/models"

	"gorm.io/gorm"
)

// OrderFilter narrows an order listing; zero fields do not filter
type OrderFilter struct {
	UserID uint
	Status models.OrderStatus
}

// OrderCounts is the order part of the dashboard statistics
type OrderCounts struct {
	Total     int64
	Pending   int64
	Completed int64
	Revenue   float64
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.id")
}

// CreateOrder inserts the order with its lines and the initial history row
func (t *Tx) CreateOrder(order *models.Order, changedBy uint, note string) error {
	if err := t.db.Create(order).Error; err != nil {
		return err
	}
	return t.AddHistory(&models.OrderStatusHistory{
		OrderID:   order.ID,
		ToStatus:  order.Status,
		ChangedBy: changedBy,
		Note:      note,
		CreatedAt: order.CreatedAt,
	})
}

func (t *Tx) Order(id uint) (*models.Order, error) {
	var order models.Order
	if err := t.db.Preload("Items", preloadItems).First(&order, id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.With(apperr.ErrOrderNotFound, itoa(id), "order %d not found", id)
		}
		return nil, err
	}
	return &order, nil
}

// SaveOrderState persists the mutable part of an order. Lines are never rewritten.
func (t *Tx) SaveOrderState(order *models.Order) error {
	return t.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"estimated_time": order.EstimatedTime,
		"updated_at":     order.UpdatedAt,
	}).Error
}

func (t *Tx) AddHistory(entry *models.OrderStatusHistory) error {
	return t.db.Create(entry).Error
}

func (t *Tx) History(orderID uint) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	if err := t.db.Where("order_id = ?", orderID).Order("id").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// Orders lists orders newest first (order date descending, then id descending)
func (t *Tx) Orders(filter OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	q := t.db.Preload("Items", preloadItems)
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	SortNewestFirst(orders)
	return orders, nil
}

// SortNewestFirst orders by order date descending, ties broken by id descending
func SortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].OrderDate.After(orders[j].OrderDate)
		}
		return orders[i].ID > orders[j].ID
	})
}

func (t *Tx) CountOrders() (OrderCounts, error) {
	var c OrderCounts
	base := t.db.Model(&models.Order{})
	if err := base.Session(&gorm.Session{}).Count(&c.Total).Error; err != nil {
		return c, err
	}
	pending := []models.OrderStatus{models.StatusPending, models.StatusConfirmed, models.StatusPreparing}
	if err := base.Session(&gorm.Session{}).Where("status IN ?", pending).Count(&c.Pending).Error; err != nil {
		return c, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", models.StatusDelivered).Count(&c.Completed).Error; err != nil {
		return c, err
	}
	var revenue float64
	err := base.Session(&gorm.Session{}).
		Where("status = ?", models.StatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		return c, err
	}
	c.Revenue = math.Round(revenue*100) / 100
	return c, nil
}
