package routes

import (
	"github.com/gin-gonic/gin"

	"food-delivery-tracking/handlers"
	"food-delivery-tracking/middleware"
	"food-delivery-tracking/models"
)

// Deps is everything the router needs from main.
type Deps struct {
	Handler *handlers.Handler
	Secret  []byte
	Users   middleware.UserFinder
	Limiter *middleware.RateLimiter
	Metrics gin.HandlerFunc
}

func SetupRoutes(r *gin.Engine, d Deps) {
	auth := middleware.AuthRequired(d.Secret, d.Users)
	rl := d.Limiter
	h := d.Handler

	r.GET("/health", handlers.Health)
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics)
	}

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(auth)
	{
		authed.GET("/profile", h.GetProfile)

		// Order tracking, open to every party of the order
		authed.GET("/orders/:id/status", rl.PerMinute(60), h.GetOrderStatus)
		authed.GET("/orders/:id/history", rl.PerMinute(30), h.GetOrderHistory)
		authed.POST("/orders/:id/update-status", rl.PerMinute(20), h.UpdateOrderStatus)
		authed.GET("/orders/:id/metrics", rl.PerMinute(30), h.GetDeliveryMetrics)

		// Notification inbox
		authed.GET("/notifications", rl.PerMinute(30), h.GetNotifications)
		authed.GET("/notifications/unread-count", rl.PerMinute(60), h.GetUnreadCount)
		authed.POST("/notifications/:id/read", rl.PerMinute(60), h.MarkNotificationRead)
		authed.POST("/notifications/read-all", rl.PerMinute(10), h.MarkAllNotificationsRead)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(auth, middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	restaurant := r.Group("/api/restaurant")
	restaurant.Use(auth, middleware.RoleRequired(models.RoleRestaurant))
	{
		restaurant.GET("", h.GetMyRestaurant)
		restaurant.PUT("/availability", h.UpdateAvailability)
		restaurant.GET("/orders", h.GetRestaurantOrders)
	}

	// ── Delivery agent routes ──────────────────────────────────────
	delivery := r.Group("/api/delivery")
	delivery.Use(auth, middleware.RoleRequired(models.RoleDeliveryAgent))
	{
		delivery.GET("/orders/available", h.GetAvailableOrders)
		delivery.GET("/orders/current", h.GetCurrentOrders)
		delivery.POST("/orders/:id/accept", rl.PerMinute(20), h.AcceptOrder)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(auth, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.DELETE("/orders/:id", h.AdminDeleteOrder)
		admin.POST("/notifications/send", h.AdminSendNotification)
	}
}
