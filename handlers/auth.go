package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-tracking/middleware"
)

// GetProfile returns the authenticated user
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.users(c.Request.Context(), middleware.GetActor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
