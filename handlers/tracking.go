package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-tracking/lifecycle"
	"food-delivery-tracking/middleware"
	"food-delivery-tracking/models"
	"food-delivery-tracking/statemachine"
)

type UpdateStatusRequest struct {
	Status         models.OrderStatus `json:"status" binding:"required,order_status"`
	Latitude       *float64           `json:"location_latitude" binding:"omitempty,latitude"`
	Longitude      *float64           `json:"location_longitude" binding:"omitempty,longitude"`
	Notes          *string            `json:"notes" binding:"omitempty,max=500"`
	ExpectedStatus models.OrderStatus `json:"expected_status" binding:"omitempty,order_status"`
}

// accessibleOrder loads the order named in the path and checks the caller is
// a party to it. It writes the error response itself.
func (h *Handler) accessibleOrder(c *gin.Context) (*models.Order, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if !statemachine.CanAccess(middleware.GetActor(c), order) {
		forbidden(c, "Access denied to this order")
		return nil, false
	}
	return order, true
}

// GetOrderStatus returns the order's current tracking snapshot
func (h *Handler) GetOrderStatus(c *gin.Context) {
	order, ok := h.accessibleOrder(c)
	if !ok {
		return
	}
	snapshot, err := h.orders.Status(c.Request.Context(), order.ID, middleware.GetLocale(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": snapshot})
}

// GetOrderHistory returns every tracking event of the order, oldest first
func (h *Handler) GetOrderHistory(c *gin.Context) {
	order, ok := h.accessibleOrder(c)
	if !ok {
		return
	}
	events, err := h.orders.History(c.Request.Context(), order.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"history":      events,
			"count":        len(events),
		},
	})
}

// UpdateOrderStatus moves the order to a new status on behalf of the caller
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	actor := middleware.GetActor(c)
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, ok := h.accessibleOrder(c)
	if !ok {
		return
	}
	if err := statemachine.Authorize(actor, order, req.Status); err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"success":          false,
			"error":            "You are not allowed to set this status",
			"current_status":   order.Status,
			"requested_status": req.Status,
			"allowed_statuses": statemachine.RequestableBy(actor.Role),
		})
		return
	}

	expected := req.ExpectedStatus
	if actor.Role == models.RoleCustomer {
		// The pending check above must still hold when the cancel commits.
		expected = models.StatusPending
	}

	res, err := h.orders.Transition(c.Request.Context(), lifecycle.TransitionRequest{
		OrderID:   order.ID,
		Status:    req.Status,
		Actor:     actor,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Notes:     req.Notes,
		Expected:  expected,
		Locale:    middleware.GetLocale(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"data": gin.H{
			"order_id":                res.Order.ID,
			"order_number":            res.Order.OrderNumber,
			"previous_status":         res.Previous,
			"current_status":          res.Order.Status,
			"status_description":      statemachine.Label(res.Order.Status, middleware.GetLocale(c)),
			"estimated_delivery_time": res.Order.EstimatedDeliveryTime,
			"tracking_event":          res.Event,
			"notifications_sent":      res.Notifications,
		},
	})
}

// GetDeliveryMetrics returns preparation, delivery and total durations.
// Customers are not allowed.
func (h *Handler) GetDeliveryMetrics(c *gin.Context) {
	if middleware.GetActor(c).Role == models.RoleCustomer {
		forbidden(c, "Access denied to delivery metrics")
		return
	}
	order, ok := h.accessibleOrder(c)
	if !ok {
		return
	}
	metrics, err := h.orders.Metrics(c.Request.Context(), order.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if metrics == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "No tracking data yet", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": metrics})
}
