package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/model"
	"rental-service/internal/rental"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

const dateLayout = "2006-01-02"

// RentalRequest defines the structure for rental creation/update requests
type RentalRequest struct {
	VehicleID        uint   `json:"vehicle_id"`
	CustomerID       uint   `json:"customer_id"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	ActualReturnDate string `json:"actual_return_date,omitempty"`
	Status           string `json:"status,omitempty"`
	Notes            string `json:"notes"`
}

// RentalHandler serves the rental lifecycle
type RentalHandler struct {
	service *rental.Service
}

// NewRentalHandler creates a rental handler over the lifecycle service
func NewRentalHandler(service *rental.Service) *RentalHandler {
	return &RentalHandler{service: service}
}

// ListRentals returns all rentals, optionally filtered by status
func (h *RentalHandler) ListRentals(c echo.Context) error {
	log := logger.FromContext(c)

	rentals, err := h.service.List(model.RentalStatus(c.QueryParam("status")))
	if err != nil {
		log.Error("Failed to list rentals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve rentals"})
	}
	return c.JSON(http.StatusOK, rentals)
}

// GetRental returns one rental by id
func (h *RentalHandler) GetRental(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}

	r, err := h.service.Get(uint(id))
	if err != nil {
		if errors.Is(err, rental.ErrRentalNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rental not found"})
		}
		log.Error("Failed to load rental", zap.Uint64("rental_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve rental"})
	}
	return c.JSON(http.StatusOK, r)
}

// CreateRental opens a new rental against an available vehicle
func (h *RentalHandler) CreateRental(c echo.Context) error {
	log := logger.FromContext(c)

	var req RentalRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be formatted as YYYY-MM-DD"})
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be formatted as YYYY-MM-DD"})
	}

	r, err := h.service.Create(rental.CreateInput{
		VehicleID:  req.VehicleID,
		CustomerID: req.CustomerID,
		StartDate:  startDate,
		EndDate:    endDate,
		Notes:      req.Notes,
	})
	if err != nil {
		return h.mapServiceError(c, log, "create", err)
	}

	prometheus.RecordRentalOperation("create")
	return c.JSON(http.StatusCreated, r)
}

// UpdateRental edits a rental and synchronizes vehicle statuses
func (h *RentalHandler) UpdateRental(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}

	var req RentalRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("rental_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be formatted as YYYY-MM-DD"})
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be formatted as YYYY-MM-DD"})
	}

	var actualReturnDate *time.Time
	if req.ActualReturnDate != "" {
		t, err := time.Parse(dateLayout, req.ActualReturnDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "actual_return_date must be formatted as YYYY-MM-DD"})
		}
		actualReturnDate = &t
	}

	status := model.RentalStatus(req.Status)
	if status == "" {
		status = model.RentalActive
	}

	r, err := h.service.Update(uint(id), rental.UpdateInput{
		VehicleID:        req.VehicleID,
		CustomerID:       req.CustomerID,
		StartDate:        startDate,
		EndDate:          endDate,
		ActualReturnDate: actualReturnDate,
		Status:           status,
		Notes:            req.Notes,
	})
	if err != nil {
		return h.mapServiceError(c, log, "update", err)
	}

	prometheus.RecordRentalOperation("update")
	return c.JSON(http.StatusOK, r)
}

// ReturnRental completes an active rental and releases its vehicle
func (h *RentalHandler) ReturnRental(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental id"})
	}

	r, err := h.service.Return(uint(id), time.Now().UTC().Truncate(24*time.Hour))
	if err != nil {
		return h.mapServiceError(c, log, "return", err)
	}

	prometheus.RecordRentalOperation("return")
	return c.JSON(http.StatusOK, r)
}

func (h *RentalHandler) mapServiceError(c echo.Context, log *zap.Logger, operation string, err error) error {
	switch {
	case errors.Is(err, rental.ErrRentalNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "rental not found"})
	case errors.Is(err, rental.ErrVehicleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	case errors.Is(err, rental.ErrCustomerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	case errors.Is(err, rental.ErrVehicleUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle is not available for rental"})
	case errors.Is(err, rental.ErrRentalNotActive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "this rental is not active and cannot be returned"})
	case errors.Is(err, rental.ErrInvalidPeriod):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end date must not be before start date"})
	case errors.Is(err, rental.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rental status transition"})
	default:
		log.Error("Rental operation failed", zap.String("operation", operation), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rental operation failed"})
	}
}
