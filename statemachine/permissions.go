package statemachine

import (
	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
)

// requestable lists which target statuses each role may ask for.
// Admin is absent: it may request any status.
var requestable = map[models.Role]map[models.OrderStatus]bool{
	models.RoleRestaurant: {
		models.StatusConfirmed: true,
		models.StatusPreparing: true,
		models.StatusReady:     true,
		models.StatusCancelled: true,
	},
	models.RoleDeliveryAgent: {
		models.StatusPickedUp:  true,
		models.StatusDelivered: true,
	},
	models.RoleCustomer: {
		models.StatusCancelled: true,
	},
}

// RequestableBy returns the statuses a role may request, nil meaning all.
func RequestableBy(role models.Role) []models.OrderStatus {
	if role == models.RoleAdmin {
		return nil
	}
	var out []models.OrderStatus
	for _, s := range models.AllStatuses {
		if requestable[role][s] {
			out = append(out, s)
		}
	}
	return out
}

// Authorize decides whether actor may request the given status on order.
// It checks ownership and role scope only; transition legality is the
// lifecycle service's job. order.Restaurant must be loaded for restaurant actors.
func Authorize(actor models.Actor, order *models.Order, requested models.OrderStatus) error {
	if !CanAccess(actor, order) {
		return errs.ErrUnauthorized
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if !requestable[actor.Role][requested] {
		return errs.ErrUnauthorized
	}
	// Customers may only cancel before the restaurant confirms.
	if actor.Role == models.RoleCustomer && order.Status != models.StatusPending {
		return errs.ErrUnauthorized
	}
	return nil
}

// CanAccess reports whether actor is a party to order.
func CanAccess(actor models.Actor, order *models.Order) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return order.CustomerID == actor.ID
	case models.RoleRestaurant:
		return order.Restaurant != nil && order.Restaurant.OwnerID == actor.ID
	case models.RoleDeliveryAgent:
		return order.DeliveryAgentID != nil && *order.DeliveryAgentID == actor.ID
	}
	return false
}
