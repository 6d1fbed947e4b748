package errs

import (
	"errors"
	"fmt"

	"food-delivery-tracking/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("not authorized for this operation")
	ErrPersistence      = errors.New("persistence failure")
	ErrConflict         = errors.New("concurrent update conflict")
	ErrAlreadyAssigned  = errors.New("order already has a delivery agent")
	ErrNotAssignable    = errors.New("order cannot be assigned in its current status")
	ErrRestaurantClosed = errors.New("restaurant is currently closed")
)

// IllegalTransitionError is returned when the requested status is not
// reachable from the order's current status.
type IllegalTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s -> %s", e.From, e.To)
}

// IsIllegalTransition unwraps err into an IllegalTransitionError if it is one.
func IsIllegalTransition(err error) (*IllegalTransitionError, bool) {
	var target *IllegalTransitionError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Persistence wraps a storage failure so callers can match ErrPersistence
// while keeping the cause available.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
