package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RentalStatus is persisted as a string on the rental record
type RentalStatus string

const (
	RentalActive    RentalStatus = "active"
	RentalCompleted RentalStatus = "completed"
	RentalCancelled RentalStatus = "cancelled"
)

// allowTransition defines the legal rental status transitions.
// Completed and cancelled are terminal. No exposed operation currently
// performs active -> cancelled; the edge stays legal for future use.
var allowTransition = map[RentalStatus][]RentalStatus{
	RentalActive:    {RentalCompleted, RentalCancelled},
	RentalCompleted: {},
	RentalCancelled: {},
}

// CanTransition reports whether from -> to is a legal status transition
func CanTransition(from, to RentalStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := allowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Rental ties one vehicle to one customer for a date range
type Rental struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	VehicleID        uint           `json:"vehicle_id" gorm:"index;not null"`
	Vehicle          *Vehicle       `json:"vehicle,omitempty"`
	CustomerID       uint           `json:"customer_id" gorm:"index;not null"`
	Customer         *Customer      `json:"customer,omitempty"`
	StartDate        time.Time      `json:"start_date" gorm:"type:date;not null"`
	EndDate          time.Time      `json:"end_date" gorm:"type:date;not null"`
	ActualReturnDate *time.Time     `json:"actual_return_date,omitempty" gorm:"type:date"`
	TotalCost        float64        `json:"total_cost"`
	Status           RentalStatus   `json:"status" gorm:"type:varchar(20);index;default:'active'"`
	Notes            string         `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// ApplyTransition applies a status change and stamps the return date on
// completion. Callers must only use it after CanTransition.
func (r *Rental) ApplyTransition(to RentalStatus, now time.Time) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("invalid rental status transition: %s -> %s", r.Status, to)
	}
	r.Status = to
	if to == RentalCompleted && r.ActualReturnDate == nil {
		t := now
		r.ActualReturnDate = &t
	}
	return nil
}

// RentalDays counts the billable days of a date range, both ends inclusive
func RentalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// TotalCost computes the rental price: inclusive days times the daily rate
func TotalCost(start, end time.Time, dailyRate float64) float64 {
	return float64(RentalDays(start, end)) * dailyRate
}
