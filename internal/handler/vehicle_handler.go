package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/model"
	"rental-service/internal/rental"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

// VehicleRequest defines the structure for vehicle creation/update requests
type VehicleRequest struct {
	Make         string              `json:"make"`
	Model        string              `json:"model"`
	Year         int                 `json:"year"`
	LicensePlate string              `json:"license_plate"`
	Status       model.VehicleStatus `json:"status"`
	DailyRate    float64             `json:"daily_rate"`
	Color        string              `json:"color"`
	Mileage      int                 `json:"mileage"`
}

// VehicleHandler serves the fleet registry
type VehicleHandler struct {
	db *gorm.DB
}

// NewVehicleHandler creates a vehicle handler over the given store handle
func NewVehicleHandler(db *gorm.DB) *VehicleHandler {
	return &VehicleHandler{db: db}
}

// ListVehicles returns all vehicles with optional status filtering
func (h *VehicleHandler) ListVehicles(c echo.Context) error {
	log := logger.FromContext(c)

	query := h.db
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var vehicles []model.Vehicle
	if result := query.Find(&vehicles); result.Error != nil {
		log.Error("Failed to list vehicles", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve vehicles"})
	}

	return c.JSON(http.StatusOK, vehicles)
}

// GetVehicle returns one vehicle by id
func (h *VehicleHandler) GetVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var vehicle model.Vehicle
	if result := h.db.First(&vehicle, id); result.Error != nil {
		log.Error("Vehicle not found", zap.String("vehicle_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}
	return c.JSON(http.StatusOK, vehicle)
}

// CreateVehicle adds a vehicle to the fleet
func (h *VehicleHandler) CreateVehicle(c echo.Context) error {
	log := logger.FromContext(c)

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Make == "" || req.Model == "" || req.LicensePlate == "" || req.DailyRate <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "make, model, license_plate and a positive daily_rate are required"})
	}

	status := req.Status
	if status == "" {
		status = model.VehicleAvailable
	}
	if !model.ValidVehicleStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle status"})
	}

	// Check if a vehicle with this license plate already exists
	var count int64
	h.db.Model(&model.Vehicle{}).Where("license_plate = ?", req.LicensePlate).Count(&count)
	if count > 0 {
		log.Warn("Vehicle with this license plate already exists", zap.String("license_plate", req.LicensePlate))
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle with this license plate already exists"})
	}

	vehicle := model.Vehicle{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		Status:       status,
		DailyRate:    req.DailyRate,
		Color:        req.Color,
		Mileage:      req.Mileage,
	}
	if result := h.db.Create(&vehicle); result.Error != nil {
		log.Error("Failed to create vehicle",
			zap.String("license_plate", req.LicensePlate),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create vehicle"})
	}

	h.updateFleetGauge()

	log.Info("Vehicle created",
		zap.String("vehicle_id", strconv.FormatUint(uint64(vehicle.ID), 10)),
		zap.String("license_plate", vehicle.LicensePlate))
	return c.JSON(http.StatusCreated, vehicle)
}

// UpdateVehicle edits a vehicle
func (h *VehicleHandler) UpdateVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("vehicle_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	var vehicle model.Vehicle
	if result := h.db.First(&vehicle, id); result.Error != nil {
		log.Error("Vehicle not found for update", zap.String("vehicle_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}

	if req.Status != "" && !model.ValidVehicleStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle status"})
	}

	// Check if the license plate changed to one that already exists
	if req.LicensePlate != vehicle.LicensePlate {
		var count int64
		h.db.Model(&model.Vehicle{}).
			Where("license_plate = ? AND id != ?", req.LicensePlate, id).
			Count(&count)
		if count > 0 {
			log.Warn("Vehicle with this license plate already exists",
				zap.String("license_plate", req.LicensePlate))
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle with this license plate already exists"})
		}
	}

	vehicle.Make = req.Make
	vehicle.Model = req.Model
	vehicle.Year = req.Year
	vehicle.LicensePlate = req.LicensePlate
	if req.Status != "" {
		vehicle.Status = req.Status
	}
	vehicle.DailyRate = req.DailyRate
	vehicle.Color = req.Color
	vehicle.Mileage = req.Mileage

	if result := h.db.Save(&vehicle); result.Error != nil {
		log.Error("Failed to update vehicle", zap.String("vehicle_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update vehicle"})
	}

	h.updateFleetGauge()

	log.Info("Vehicle updated",
		zap.String("vehicle_id", id),
		zap.String("license_plate", vehicle.LicensePlate))
	return c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle removes a vehicle unless it has an active rental
func (h *VehicleHandler) DeleteVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var vehicle model.Vehicle
	if result := h.db.First(&vehicle, id); result.Error != nil {
		log.Warn("Vehicle not found for deletion", zap.String("vehicle_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}

	rented, err := rental.HasActiveRentalForVehicle(h.db, vehicle.ID)
	if err != nil {
		log.Error("Failed to check active rentals", zap.String("vehicle_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete vehicle"})
	}
	if rented {
		log.Warn("Delete rejected: vehicle is currently rented", zap.String("vehicle_id", id))
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete vehicle that is currently rented"})
	}

	if result := h.db.Delete(&vehicle); result.Error != nil {
		log.Error("Failed to delete vehicle", zap.String("vehicle_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete vehicle"})
	}

	h.updateFleetGauge()

	log.Info("Vehicle deleted",
		zap.String("vehicle_id", id),
		zap.String("license_plate", vehicle.LicensePlate))
	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle deleted successfully"})
}

// updateFleetGauge refreshes the per-status fleet gauge
func (h *VehicleHandler) updateFleetGauge() {
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := h.db.Model(&model.Vehicle{}).
		Select("status, count(id) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return
	}
	for _, sc := range counts {
		prometheus.UpdateFleetStatus(sc.Status, sc.Count)
	}
}
