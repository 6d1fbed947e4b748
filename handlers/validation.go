package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"food-delivery-tracking/models"
)

// RegisterValidators adds the domain binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return models.OrderStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("notification_type", func(fl validator.FieldLevel) bool {
		return models.NotificationCategory(fl.Field().String()).Valid()
	})
}
