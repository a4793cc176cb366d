// Package rental owns the rental lifecycle and every vehicle status
// mutation that comes with it. Each operation runs in one transaction so
// the rental write and the vehicle status flip commit or roll back as a
// unit.
package rental

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/model"
)

var (
	ErrRentalNotFound     = errors.New("rental not found")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrVehicleUnavailable = errors.New("vehicle is not available for rental")
	ErrRentalNotActive    = errors.New("rental is not active")
	ErrInvalidPeriod      = errors.New("end date must not be before start date")
	ErrInvalidStatus      = errors.New("invalid rental status transition")
)

// Service implements the rental lifecycle over an injected store handle
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewService creates a rental lifecycle service
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// CreateInput carries the fields for a new rental
type CreateInput struct {
	VehicleID  uint
	CustomerID uint
	StartDate  time.Time
	EndDate    time.Time
	Notes      string
}

// UpdateInput carries the fields for a rental edit
type UpdateInput struct {
	VehicleID        uint
	CustomerID       uint
	StartDate        time.Time
	EndDate          time.Time
	ActualReturnDate *time.Time
	Status           model.RentalStatus
	Notes            string
}

// Create opens a new rental against an available vehicle. The rental is
// persisted and the vehicle moves available -> rented in the same
// transaction; any failure leaves both unchanged.
//
// The availability check is not protected by a row lock: two concurrent
// creates against the same vehicle can both observe "available" before
// either commits.
func (s *Service) Create(in CreateInput) (*model.Rental, error) {
	if in.EndDate.Before(in.StartDate) {
		return nil, ErrInvalidPeriod
	}

	var rental model.Rental
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var vehicle model.Vehicle
		if err := tx.First(&vehicle, in.VehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return err
		}
		if vehicle.Status != model.VehicleAvailable {
			return ErrVehicleUnavailable
		}

		var customer model.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		rental = model.Rental{
			VehicleID:  in.VehicleID,
			CustomerID: in.CustomerID,
			StartDate:  in.StartDate,
			EndDate:    in.EndDate,
			TotalCost:  model.TotalCost(in.StartDate, in.EndDate, vehicle.DailyRate),
			Status:     model.RentalActive,
			Notes:      in.Notes,
		}
		if err := tx.Create(&rental).Error; err != nil {
			return err
		}

		return tx.Model(&vehicle).Update("status", model.VehicleRented).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Rental created",
		zap.Uint("rental_id", rental.ID),
		zap.Uint("vehicle_id", rental.VehicleID),
		zap.Uint("customer_id", rental.CustomerID),
		zap.Float64("total_cost", rental.TotalCost))
	return &rental, nil
}

// Return completes an active rental: the actual return date is stamped
// with today, the rental moves to completed and the vehicle becomes
// available again. Anything but an active rental is rejected unchanged.
func (s *Service) Return(rentalID uint, today time.Time) (*model.Rental, error) {
	var rental model.Rental
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rental, rentalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRentalNotFound
			}
			return err
		}
		if rental.Status != model.RentalActive {
			return ErrRentalNotActive
		}

		if err := rental.ApplyTransition(model.RentalCompleted, today); err != nil {
			return err
		}
		if err := tx.Save(&rental).Error; err != nil {
			return err
		}

		return tx.Model(&model.Vehicle{}).
			Where("id = ?", rental.VehicleID).
			Update("status", model.VehicleAvailable).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Rental returned",
		zap.Uint("rental_id", rental.ID),
		zap.Uint("vehicle_id", rental.VehicleID))
	return &rental, nil
}

// Update edits a rental and keeps the vehicle statuses in sync. The total
// cost is recomputed from the (possibly new) vehicle's daily rate. When
// the vehicle reference changes, the previous vehicle is released and the
// new one acquired unless the rental is no longer active.
func (s *Service) Update(rentalID uint, in UpdateInput) (*model.Rental, error) {
	if in.EndDate.Before(in.StartDate) {
		return nil, ErrInvalidPeriod
	}

	var rental model.Rental
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rental, rentalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRentalNotFound
			}
			return err
		}
		if !model.CanTransition(rental.Status, in.Status) {
			return ErrInvalidStatus
		}

		var vehicle model.Vehicle
		if err := tx.First(&vehicle, in.VehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return err
		}

		oldVehicleID := rental.VehicleID
		statusChanged := rental.Status != in.Status

		rental.VehicleID = in.VehicleID
		rental.CustomerID = in.CustomerID
		rental.StartDate = in.StartDate
		rental.EndDate = in.EndDate
		rental.ActualReturnDate = in.ActualReturnDate
		rental.Status = in.Status
		rental.Notes = in.Notes
		rental.TotalCost = model.TotalCost(in.StartDate, in.EndDate, vehicle.DailyRate)

		if err := tx.Save(&rental).Error; err != nil {
			return err
		}

		// Sync vehicle statuses when the vehicle changed or the rental
		// left the active state
		if oldVehicleID != in.VehicleID || (statusChanged && in.Status != model.RentalActive) {
			if err := tx.Model(&model.Vehicle{}).
				Where("id = ?", oldVehicleID).
				Update("status", model.VehicleAvailable).Error; err != nil {
				return err
			}

			newStatus := model.VehicleAvailable
			if rental.Status == model.RentalActive {
				newStatus = model.VehicleRented
			}
			if err := tx.Model(&vehicle).Update("status", newStatus).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Rental updated",
		zap.Uint("rental_id", rental.ID),
		zap.String("status", string(rental.Status)),
		zap.Float64("total_cost", rental.TotalCost))
	return &rental, nil
}

// Get loads a rental with its vehicle and customer
func (s *Service) Get(rentalID uint) (*model.Rental, error) {
	var rental model.Rental
	err := s.db.Preload("Vehicle").Preload("Customer").First(&rental, rentalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}
	return &rental, nil
}

// List returns all rentals, optionally filtered by status
func (s *Service) List(status model.RentalStatus) ([]model.Rental, error) {
	var rentals []model.Rental
	query := s.db.Preload("Vehicle").Preload("Customer").Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

// HasActiveRentalForVehicle reports whether a vehicle is referenced by an
// active rental. Used as the referential delete guard for vehicles.
func HasActiveRentalForVehicle(db *gorm.DB, vehicleID uint) (bool, error) {
	var count int64
	err := db.Model(&model.Rental{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, model.RentalActive).
		Count(&count).Error
	return count > 0, err
}

// HasActiveRentalForCustomer reports whether a customer is referenced by
// an active rental. Used as the referential delete guard for customers.
func HasActiveRentalForCustomer(db *gorm.DB, customerID uint) (bool, error) {
	var count int64
	err := db.Model(&model.Rental{}).
		Where("customer_id = ? AND status = ?", customerID, model.RentalActive).
		Count(&count).Error
	return count > 0, err
}
