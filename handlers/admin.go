package handlers

import (
	"net/http"
	"strings"

	"cafeteria-api/models"
	"cafeteria-api/store"

	"github.com/gin-gonic/gin"
)

type StatusUpdateRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// AdminGetAllOrders lists orders newest first. ?status= filters by status,
// ?today=true keeps only orders placed today.
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		orders []models.Order
		err    error
	)
	switch status := strings.ToUpper(c.Query("status")); {
	case c.Query("today") == "true":
		orders, err = h.orders.Today(ctx)
	case status != "":
		orders, err = h.orders.ByStatus(ctx, models.OrderStatus(status))
	default:
		orders, err = h.orders.All(ctx)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	summary := map[models.OrderStatus]int{}
	for _, o := range orders {
		summary[o.Status]++
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

// UpdateOrderStatus moves an order one step along the kitchen pipeline
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	order, err := h.orders.AdvanceStatus(c.Request.Context(), id, req.Status, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Order status updated to " + string(order.Status),
		"order":       order,
		"next_status": h.orders.NextStatus(order.Status),
	})
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.reporting.Statistics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminGetAllUsers returns all users, optionally filtered by ?role=
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	role := models.UserRole(strings.ToUpper(c.Query("role")))
	users, err := h.auth.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

func (h *Handler) Search(c *gin.Context) {
	res, err := h.reporting.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportData downloads a JSON snapshot of users, menu and orders
func (h *Handler) ExportData(c *gin.Context) {
	snap, err := h.reporting.Export(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cafeteria-export.json"`)
	c.JSON(http.StatusOK, snap)
}

// ImportData replaces all data with the posted snapshot
func (h *Handler) ImportData(c *gin.Context) {
	var snap store.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := h.reporting.Import(c.Request.Context(), &snap); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Data imported successfully",
		"users":      len(snap.Users),
		"menu_items": len(snap.MenuItems),
		"orders":     len(snap.Orders),
	})
}
