package routes

import (
	"cafeteria-api/handlers"
	"cafeteria-api/middleware"
	"cafeteria-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, authn middleware.Authenticator) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/signup", h.Signup)
		public.POST("/auth/login", h.Login)
		public.POST("/auth/verify-otp", h.VerifyOTP)
		public.POST("/auth/resend-otp", h.ResendOTP)
		public.POST("/auth/forgot-password", h.ForgotPassword)
		public.POST("/auth/reset-password", h.ResetPassword)

		// Menu browsing (no auth needed)
		public.GET("/menu", h.ListMenu)
		public.GET("/menu/:id", h.GetMenuItem)

		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(authn))
	{
		auth.GET("/profile", h.GetProfile)
		auth.POST("/auth/logout", h.Logout)

		auth.POST("/orders", h.PlaceOrder)
		auth.GET("/orders", h.GetMyOrders)
		auth.GET("/orders/stream", h.StreamOrders)
		auth.GET("/orders/:id", h.GetOrderDetail)
		auth.PATCH("/orders/:id/cancel", h.CancelOrder)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(authn), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
		admin.GET("/statistics", h.Statistics)
		admin.GET("/users", h.AdminGetAllUsers)
		admin.GET("/search", h.Search)

		// Menu management
		admin.POST("/menu", h.CreateMenuItem)
		admin.POST("/menu/import", h.ImportMenu)
		admin.PUT("/menu/:id", h.UpdateMenuItem)
		admin.DELETE("/menu/:id", h.DeleteMenuItem)
		admin.PATCH("/menu/:id/toggle", h.ToggleMenuItem)

		// Backup
		admin.GET("/export", h.ExportData)
		admin.POST("/import", h.ImportData)
	}
}
