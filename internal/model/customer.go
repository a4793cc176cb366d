package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a person renting vehicles
type Customer struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	FirstName     string         `json:"first_name" gorm:"type:varchar(50);not null"`
	LastName      string         `json:"last_name" gorm:"type:varchar(50);not null"`
	Email         string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone         string         `json:"phone" gorm:"type:varchar(20)"`
	Address       string         `json:"address" gorm:"type:varchar(200)"`
	DriverLicense string         `json:"driver_license" gorm:"type:varchar(50);uniqueIndex;not null"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
