package service

import (
	"math"
	"time"

	"cafeteria-api/apperr"
	"cafeteria-api/models"
)

type CartLine struct {
	MenuItemID          uint   `json:"menu_item_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

type CartRequest struct {
	Items               []CartLine `json:"items"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
}

// PricedCart is a cart resolved against one catalog snapshot
type PricedCart struct {
	Lines       []models.OrderItem
	Total       float64
	PrepMinutes int
}

// EstimatedAt is when the kitchen should finish if it starts at from
func (p *PricedCart) EstimatedAt(from time.Time) time.Time {
	return from.Add(time.Duration(p.PrepMinutes) * time.Minute)
}

// PriceCart resolves every line against catalog. The first bad line aborts the
// whole cart: a missing item, an unavailable one, or a non-positive quantity.
func PriceCart(catalog map[uint]models.MenuItem, lines []CartLine) (*PricedCart, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("items", "cart is empty")
	}

	priced := &PricedCart{Lines: make([]models.OrderItem, 0, len(lines))}
	var total float64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperr.Validation("quantity", "quantity for menu item %d must be greater than 0", line.MenuItemID)
		}
		item, ok := catalog[line.MenuItemID]
		if !ok {
			return nil, apperr.With(apperr.ErrMenuItemNotFound, itoa(line.MenuItemID),
				"menu item with ID %d not found", line.MenuItemID)
		}
		if !item.IsAvailable {
			return nil, apperr.With(apperr.ErrMenuItemUnavailable, item.Name,
				"menu item %q is currently unavailable", item.Name)
		}

		orderItem := models.OrderItem{
			MenuItemID:             item.ID,
			MenuItemName:           item.Name,
			Quantity:               line.Quantity,
			UnitPrice:              item.Price,
			PreparationTimeMinutes: item.PreparationTimeMinutes,
			SpecialInstructions:    line.SpecialInstructions,
		}
		total += orderItem.Subtotal()
		priced.PrepMinutes += item.PreparationTimeMinutes * line.Quantity
		priced.Lines = append(priced.Lines, orderItem)
	}
	priced.Total = roundCents(total)
	return priced, nil
}

// prepMinutes re-derives the kitchen time from an order's line snapshots
func prepMinutes(lines []models.OrderItem) int {
	total := 0
	for _, l := range lines {
		total += l.PreparationTimeMinutes * l.Quantity
	}
	return total
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
