package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-tracking/lifecycle"
	"food-delivery-tracking/middleware"
)

type PlaceOrderRequest struct {
	RestaurantID      uint     `json:"restaurant_id" binding:"required"`
	TotalAmount       float64  `json:"total_amount" binding:"required,gt=0"`
	DeliveryAddress   string   `json:"delivery_address" binding:"required,max=255"`
	DeliveryLatitude  *float64 `json:"delivery_latitude" binding:"omitempty,latitude"`
	DeliveryLongitude *float64 `json:"delivery_longitude" binding:"omitempty,longitude"`
	DeliveryNotes     string   `json:"delivery_notes" binding:"max=500"`
}

// PlaceOrder creates a new pending order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), lifecycle.PlaceOrderParams{
		CustomerID:        actor.ID,
		RestaurantID:      req.RestaurantID,
		TotalAmount:       req.TotalAmount,
		DeliveryAddress:   req.DeliveryAddress,
		DeliveryLatitude:  req.DeliveryLatitude,
		DeliveryLongitude: req.DeliveryLongitude,
		DeliveryNotes:     req.DeliveryNotes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns the customer's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	filter.CustomerID = middleware.GetActor(c).ID
	list, err := h.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": list.Count, "orders": list.Orders})
}
