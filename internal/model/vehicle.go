package model

import (
	"time"

	"gorm.io/gorm"
)

// VehicleStatus is persisted as a string on the vehicle record
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleRented      VehicleStatus = "rented"
	VehicleMaintenance VehicleStatus = "maintenance"
)

// Vehicle represents a car in the fleet. Status is only flipped between
// available and rented by the rental lifecycle.
type Vehicle struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Make         string         `json:"make" gorm:"type:varchar(50);not null"`
	Model        string         `json:"model" gorm:"type:varchar(50);not null"`
	Year         int            `json:"year" gorm:"not null"`
	LicensePlate string         `json:"license_plate" gorm:"type:varchar(20);uniqueIndex;not null"`
	Status       VehicleStatus  `json:"status" gorm:"type:varchar(20);default:'available'"`
	DailyRate    float64        `json:"daily_rate" gorm:"not null"`
	Color        string         `json:"color" gorm:"type:varchar(20)"`
	Mileage      int            `json:"mileage"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// ValidVehicleStatus reports whether s is one of the known vehicle statuses
func ValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case VehicleAvailable, VehicleRented, VehicleMaintenance:
		return true
	}
	return false
}
