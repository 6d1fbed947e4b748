package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-tracking/middleware"
)

// GetAvailableOrders shows unassigned orders a delivery agent may accept
func (h *Handler) GetAvailableOrders(c *gin.Context) {
	orders, err := h.orders.AvailableOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "orders": orders})
}

// GetCurrentOrders returns the agent's orders that are ready or on the road,
// each with its tracking snapshot
func (h *Handler) GetCurrentOrders(c *gin.Context) {
	orders, err := h.orders.AgentCurrentOrders(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "orders": orders})
}

// AcceptOrder assigns the order to the logged-in delivery agent.
// Two agents racing for one order: exactly one wins, the other gets 409.
func (h *Handler) AcceptOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.AssignAgent(c.Request.Context(), id, middleware.GetActor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order accepted for delivery",
		"order":   order,
	})
}
