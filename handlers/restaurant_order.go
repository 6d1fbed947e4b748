package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-tracking/middleware"
	"food-delivery-tracking/models"
)

// GetRestaurantOrders returns orders for the owner's restaurant with a
// per-status summary. ?status= narrows the list, not the summary.
func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status filter"})
		return
	}

	restaurant, list, err := h.orders.RestaurantOrders(c.Request.Context(), middleware.GetActor(c).ID, status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"restaurant":    restaurant.Name,
		"order_summary": list.Summary,
		"count":         list.Count,
		"orders":        list.Orders,
	})
}
