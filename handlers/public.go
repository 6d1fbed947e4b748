package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-tracking/middleware"
	"food-delivery-tracking/models"
	"food-delivery-tracking/statemachine"
)

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Food Delivery Order Tracking API",
	})
}

// ListRestaurants returns restaurants (public). ?open=true hides closed ones.
func (h *Handler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.orders.ListRestaurants(c.Request.Context(), c.Query("open") == "true", c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

// GetStateMachineInfo describes the order lifecycle, generated from the
// transition and permission tables
func GetStateMachineInfo(c *gin.Context) {
	locale := middleware.GetLocale(c)
	transitions := statemachine.GetAllTransitions()
	info := make([]gin.H, 0, len(transitions))
	for _, t := range transitions {
		info = append(info, gin.H{"from": t.From, "to": t.To, "roles": rolesFor(t.To)})
	}

	var terminal []models.OrderStatus
	labels := make(map[models.OrderStatus]string, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		labels[s] = statemachine.Label(s, locale)
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": terminal,
		"labels":          labels,
		"description":     "Food Delivery Order Lifecycle State Machine",
	})
}

var roles = []models.Role{models.RoleCustomer, models.RoleRestaurant, models.RoleDeliveryAgent, models.RoleAdmin}

// rolesFor lists the roles that may request status.
func rolesFor(status models.OrderStatus) []models.Role {
	var out []models.Role
	for _, r := range roles {
		allowed := statemachine.RequestableBy(r)
		if allowed == nil {
			out = append(out, r)
			continue
		}
		for _, s := range allowed {
			if s == status {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
