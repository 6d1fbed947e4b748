package models

import (
	"strconv"
	"time"
)

// Role defines allowed roles in the system
type Role string

const (
	RoleCustomer      Role = "customer"
	RoleRestaurant    Role = "restaurant"
	RoleDeliveryAgent Role = "delivery_agent"
	RoleAdmin         Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurant, RoleDeliveryAgent, RoleAdmin:
		return true
	}
	return false
}

// Actor is the identity performing an operation, tagged with the role it acts in.
type Actor struct {
	Role Role `json:"role"`
	ID   uint `json:"id"`
}

func (a Actor) String() string {
	return string(a.Role) + ":" + strconv.FormatUint(uint64(a.ID), 10)
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Role      Role      `json:"role" gorm:"size:20;not null;default:'customer'"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
