package models

import "time"

type Restaurant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OwnerID   uint      `json:"owner_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"not null"`
	Address   string    `json:"address"`
	IsOpen    bool      `json:"is_open" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
