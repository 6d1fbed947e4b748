package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-tracking/middleware"
)

// GetMyRestaurant returns the restaurant owned by the logged-in owner
func (h *Handler) GetMyRestaurant(c *gin.Context) {
	restaurant, err := h.orders.OwnedRestaurant(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "restaurant": restaurant})
}

type AvailabilityRequest struct {
	IsOpen *bool `json:"is_open" binding:"required"`
}

// UpdateAvailability opens or closes the owner's restaurant to new orders
func (h *Handler) UpdateAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	restaurant, err := h.orders.SetRestaurantOpen(c.Request.Context(), middleware.GetActor(c).ID, *req.IsOpen)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Restaurant availability updated",
		"restaurant": restaurant,
	})
}
