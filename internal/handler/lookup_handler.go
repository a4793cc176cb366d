package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/rdw"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

// LookupHandler exposes the vehicle registry search
type LookupHandler struct {
	client *rdw.Client
}

// NewLookupHandler creates a lookup handler
func NewLookupHandler(client *rdw.Client) *LookupHandler {
	return &LookupHandler{client: client}
}

// LookupVehicle queries the registry for a license plate
func (h *LookupHandler) LookupVehicle(c echo.Context) error {
	log := logger.FromContext(c)

	plate := c.Param("license_plate")
	if plate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "license plate is required"})
	}

	info := h.client.SearchByLicensePlate(plate)
	if info == nil {
		prometheus.RecordLookup("miss")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found in registry"})
	}

	prometheus.RecordLookup("hit")
	log.Info("Registry lookup succeeded", zap.String("license_plate", info.LicensePlate))
	return c.JSON(http.StatusOK, info)
}
