package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-delivery-tracking/lifecycle"
	"food-delivery-tracking/middleware"
	"food-delivery-tracking/models"
)

type orderQuery struct {
	Status       models.OrderStatus `form:"status" binding:"omitempty,order_status"`
	CustomerID   uint               `form:"customer_id"`
	RestaurantID uint               `form:"restaurant_id"`
	Limit        int                `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset       int                `form:"offset" binding:"omitempty,min=0"`
}

// listFilter binds the common order listing query parameters.
func listFilter(c *gin.Context) (lifecycle.ListFilter, bool) {
	var q orderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return lifecycle.ListFilter{}, false
	}
	return lifecycle.ListFilter{
		Status:       q.Status,
		CustomerID:   q.CustomerID,
		RestaurantID: q.RestaurantID,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}, true
}

// AdminGetAllOrders returns all orders with a per-status summary (admin only)
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	list, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var totalRevenue float64
	for _, o := range list.Orders {
		if o.Status == models.StatusDelivered {
			totalRevenue += o.TotalAmount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"order_summary": list.Summary,
		"total_revenue": totalRevenue,
		"count":         list.Count,
		"orders":        list.Orders,
	})
}

// AdminDeleteOrder removes an order together with its tracking history
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order deleted"})
}

type SendNotificationRequest struct {
	UserID   uint                        `json:"user_id" binding:"required"`
	UserType models.Role                 `json:"user_type" binding:"required,role"`
	Title    string                      `json:"title" binding:"required,max=100"`
	Message  string                      `json:"message" binding:"required,max=2000"`
	Type     models.NotificationCategory `json:"type" binding:"omitempty,notification_type"`
	Data     map[string]interface{}      `json:"data"`
}

// AdminSendNotification delivers a custom notification to one user
func (h *Handler) AdminSendNotification(c *gin.Context) {
	var req SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.users(c.Request.Context(), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if user == nil || user.Role != req.UserType {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Recipient not found"})
		return
	}

	category := req.Type
	if category == "" {
		category = models.CategorySystem
	}
	n := &models.Notification{
		RecipientID:   user.ID,
		RecipientRole: user.Role,
		Title:         req.Title,
		Body:          req.Message,
		Category:      category,
		Payload:       req.Data,
	}
	if err := h.notifications.Create(c.Request.Context(), n); err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("custom notification sent",
		zap.Stringer("admin", middleware.GetActor(c)),
		zap.Uint("notification_id", n.ID),
		zap.Stringer("recipient", models.Actor{Role: user.Role, ID: user.ID}),
	)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Notification sent", "notification": n})
}
