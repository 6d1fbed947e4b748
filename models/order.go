package models

import "time"

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusPickedUp,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID                uint        `json:"id" gorm:"primaryKey"`
	OrderNumber       string      `json:"order_number" gorm:"uniqueIndex;size:32;not null"`
	CustomerID        uint        `json:"customer_id" gorm:"not null;index"`
	RestaurantID      uint        `json:"restaurant_id" gorm:"not null;index"`
	Restaurant        *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	DeliveryAgentID   *uint       `json:"delivery_agent_id" gorm:"index"`
	Status            OrderStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	TotalAmount       float64     `json:"total_amount"`
	DeliveryAddress   string      `json:"delivery_address" gorm:"not null"`
	DeliveryLatitude  *float64    `json:"delivery_latitude"`
	DeliveryLongitude *float64    `json:"delivery_longitude"`
	DeliveryNotes     string      `json:"delivery_notes"`

	// Milestones are stamped once, when the matching status is first reached.
	ConfirmedAt           *time.Time `json:"confirmed_at"`
	PreparedAt            *time.Time `json:"prepared_at"`
	PickedUpAt            *time.Time `json:"picked_up_at"`
	DeliveredAt           *time.Time `json:"delivered_at"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time"`

	TrackingEvents []TrackingEvent `json:"tracking_events,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TrackingEvent is one immutable record of an accepted status change.
type TrackingEvent struct {
	ID               uint        `json:"id" gorm:"primaryKey"`
	OrderID          uint        `json:"order_id" gorm:"not null;index"`
	Status           OrderStatus `json:"status" gorm:"size:20;not null"`
	Latitude         *float64    `json:"location_latitude"`
	Longitude        *float64    `json:"location_longitude"`
	Notes            *string     `json:"notes"`
	EstimatedArrival *time.Time  `json:"estimated_arrival"`
	ActorID          uint        `json:"updated_by"`
	ActorRole        Role        `json:"updated_by_type" gorm:"size:20"`
	CreatedAt        time.Time   `json:"actual_time" gorm:"index"`
}
