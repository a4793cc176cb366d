// Package rdw queries the RDW open-data registry for vehicle information
// by license plate. Lookups merge the vehicle and fuel resources
// client-side; every transport, status or decoding failure is logged and
// surfaced as absence, never as an error.
package rdw

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"rental-service/pkg/config"
)

// VehicleInfo is the registry response mapped onto fleet attribute names
type VehicleInfo struct {
	LicensePlate   string `json:"license_plate"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year,omitempty"`
	Color          string `json:"color"`
	FuelType       string `json:"fuel_type,omitempty"`
	BodyType       string `json:"body_type,omitempty"`
	EngineCapacity string `json:"engine_capacity,omitempty"`
	NumberOfSeats  string `json:"number_of_seats,omitempty"`
	Weight         string `json:"weight,omitempty"`
}

// Client talks to the RDW open-data API
type Client struct {
	VehicleURL string
	FuelURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a registry lookup client
func NewClient(cfg *config.RDWConfig, logger *zap.Logger) *Client {
	return &Client{
		VehicleURL: cfg.VehicleURL,
		FuelURL:    cfg.FuelURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     logger,
	}
}

// NormalizePlate strips separators and upper-cases a license plate
func NormalizePlate(plate string) string {
	plate = strings.ReplaceAll(plate, "-", "")
	plate = strings.ReplaceAll(plate, " ", "")
	return strings.ToUpper(plate)
}

// SearchByLicensePlate looks up a vehicle by plate. It returns nil when
// the registry has no match or any part of the lookup fails.
func (c *Client) SearchByLicensePlate(plate string) *VehicleInfo {
	cleanPlate := NormalizePlate(plate)

	raw, ok := c.fetchFirst(c.VehicleURL, cleanPlate)
	if !ok {
		c.Logger.Warn("No vehicle found in registry", zap.String("license_plate", cleanPlate))
		return nil
	}

	// Merge fuel data into the vehicle record, fuel values winning on
	// overlap; a missing fuel record is not an error
	if fuel, ok := c.fetchFirst(c.FuelURL, cleanPlate); ok {
		for k, v := range fuel {
			raw[k] = v
		}
	}

	return mapVehicleData(raw)
}

// fetchFirst GETs one registry resource filtered by plate and returns the
// first record of the response array
func (c *Client) fetchFirst(baseURL, plate string) (map[string]interface{}, bool) {
	url := fmt.Sprintf("%s?kenteken=%s", baseURL, plate)

	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		c.Logger.Error("Registry request failed", zap.String("url", baseURL), zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("Registry returned non-OK status",
			zap.String("url", baseURL),
			zap.Int("status", resp.StatusCode))
		return nil, false
	}

	var records []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.Logger.Error("Failed to decode registry response", zap.String("url", baseURL), zap.Error(err))
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}
	return records[0], true
}

// mapVehicleData translates registry field names to fleet attribute names
func mapVehicleData(raw map[string]interface{}) *VehicleInfo {
	info := &VehicleInfo{
		LicensePlate:   stringField(raw, "kenteken"),
		Make:           stringField(raw, "merk"),
		Model:          stringField(raw, "handelsbenaming"),
		Color:          stringField(raw, "eerste_kleur"),
		FuelType:       stringField(raw, "brandstof_omschrijving"),
		BodyType:       stringField(raw, "carrosserie"),
		EngineCapacity: stringField(raw, "cilinderinhoud"),
		NumberOfSeats:  stringField(raw, "aantal_zitplaatsen"),
		Weight:         stringField(raw, "massa_ledig_voertuig"),
	}

	// First-admission date comes as YYYYMMDD; the year is its first four
	// digits
	if admission := stringField(raw, "datum_eerste_toelating"); len(admission) >= 4 {
		if year, err := strconv.Atoi(admission[:4]); err == nil {
			info.Year = year
		}
	}

	return info
}

func stringField(raw map[string]interface{}, key string) string {
	if v, ok := raw[key]; ok {
		switch s := v.(type) {
		case string:
			return s
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		}
	}
	return ""
}
