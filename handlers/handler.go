package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/lifecycle"
	"food-delivery-tracking/middleware"
	"food-delivery-tracking/notification"
	"food-delivery-tracking/statemachine"
)

// Handler serves the HTTP API on top of the lifecycle service and the
// notification inbox.
type Handler struct {
	orders        *lifecycle.Service
	notifications *notification.Store
	users         middleware.UserFinder
	logger        *zap.Logger
}

func New(orders *lifecycle.Service, notifications *notification.Store, users middleware.UserFinder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{orders: orders, notifications: notifications, users: users, logger: logger}
}

// parseID reads a positive numeric path parameter, answering 400 otherwise.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

func forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"success": false, "error": msg})
}

// respondError maps service errors onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	if illegal, ok := errs.IsIllegalTransition(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":           false,
			"error":             "Invalid state transition",
			"current_status":    illegal.From,
			"requested_status":  illegal.To,
			"valid_next_states": statemachine.ValidTransitionsFrom(illegal.From),
		})
		return
	}

	status := http.StatusInternalServerError
	msg := "Internal server error"
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status, msg = http.StatusNotFound, "Resource not found"
	case errors.Is(err, errs.ErrUnauthorized):
		status, msg = http.StatusForbidden, "Access denied"
	case errors.Is(err, errs.ErrConflict):
		status, msg = http.StatusConflict, "Order was updated concurrently, please retry"
	case errors.Is(err, errs.ErrAlreadyAssigned):
		status, msg = http.StatusConflict, "Order has already been accepted by another delivery agent"
	case errors.Is(err, errs.ErrNotAssignable):
		status, msg = http.StatusUnprocessableEntity, "Order cannot be accepted in its current status"
	case errors.Is(err, errs.ErrRestaurantClosed):
		status, msg = http.StatusBadRequest, "Restaurant is currently closed"
	default:
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}
