package handlers

import (
	"io"
	"net/http"
	"time"

	"cafeteria-api/apperr"
	"cafeteria-api/events"
	"cafeteria-api/middleware"
	"cafeteria-api/service"

	"github.com/gin-gonic/gin"
)

const streamKeepAlive = 25 * time.Second

// PlaceOrder prices the cart against the current menu and creates a PENDING order
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req service.CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns the caller's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.ByUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns one order with its audit trail. Employees only see their own.
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	order, err := h.orders.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if who := actor(c); !who.IsAdmin() && order.UserID != who.ID {
		h.fail(c, apperr.With(apperr.ErrForbidden, "", "you can only view your own orders"))
		return
	}
	history, err := h.orders.History(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":       order,
		"history":     history,
		"next_status": h.orders.NextStatus(order.Status),
	})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.CancelOrder(c.Request.Context(), id, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}

// StreamOrders pushes order events as server-sent events until the client
// goes away. Admins receive every order, employees only their own.
func (h *Handler) StreamOrders(c *gin.Context) {
	who := actor(c)
	ch, cancel := h.bus.Subscribe(32)
	defer cancel()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"user_id": who.ID})

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, open := <-ch:
			if !open {
				return false
			}
			if visible(ev, who) {
				c.SSEvent(ev.Type, ev)
			}
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}

func visible(ev events.Event, who service.Actor) bool {
	return who.IsAdmin() || ev.UserID == who.ID
}
