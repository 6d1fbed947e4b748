package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationCategory groups notifications for display
type NotificationCategory string

const (
	CategoryOrder     NotificationCategory = "order"
	CategoryPayment   NotificationCategory = "payment"
	CategorySystem    NotificationCategory = "system"
	CategoryPromotion NotificationCategory = "promotion"
)

// Valid reports whether c is a known category.
func (c NotificationCategory) Valid() bool {
	switch c {
	case CategoryOrder, CategoryPayment, CategorySystem, CategoryPromotion:
		return true
	}
	return false
}

// Notification is a pending message for one (recipient, role) pair.
// Only IsRead ever changes after creation, and only from false to true.
type Notification struct {
	ID            uint                 `json:"id" gorm:"primaryKey"`
	RecipientID   uint                 `json:"user_id" gorm:"not null;index:idx_notifications_recipient"`
	RecipientRole Role                 `json:"user_type" gorm:"size:20;not null;index:idx_notifications_recipient"`
	Title         string               `json:"title" gorm:"size:100;not null"`
	Body          string               `json:"message" gorm:"not null"`
	Category      NotificationCategory `json:"type" gorm:"size:20;not null"`
	Payload       datatypes.JSONMap    `json:"data"`
	IsRead        bool                 `json:"is_read" gorm:"not null;default:false"`
	CreatedAt     time.Time            `json:"created_at"`
}
