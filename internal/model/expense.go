package model

import (
	"time"

	"gorm.io/gorm"
)

// VehicleExpense records a cost incurred for a vehicle
type VehicleExpense struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	VehicleID   uint           `json:"vehicle_id" gorm:"index;not null"`
	Vehicle     *Vehicle       `json:"vehicle,omitempty"`
	ExpenseType string         `json:"expense_type" gorm:"type:varchar(50);not null"` // maintenance, repair, fuel, etc.
	Amount      float64        `json:"amount" gorm:"not null"`
	Date        time.Time      `json:"date" gorm:"type:date;not null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
