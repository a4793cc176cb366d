package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-service/internal/model"
)

func performJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateVehicle(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewVehicleHandler(db)

	e := echo.New()
	e.POST("/vehicles", h.CreateVehicle)

	rec := performJSON(e, http.MethodPost, "/vehicles",
		`{"make":"Toyota","model":"Yaris","year":2021,"license_plate":"AB-123-C","daily_rate":45.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "AB-123-C", created.LicensePlate)
	// Status defaults to available when the request omits it
	assert.Equal(t, model.VehicleAvailable, created.Status)
}

func TestCreateVehicleDuplicatePlate(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewVehicleHandler(db)

	e := echo.New()
	e.POST("/vehicles", h.CreateVehicle)

	body := `{"make":"Toyota","model":"Yaris","year":2021,"license_plate":"AB-123-C","daily_rate":45.5}`
	require.Equal(t, http.StatusCreated, performJSON(e, http.MethodPost, "/vehicles", body).Code)

	rec := performJSON(e, http.MethodPost, "/vehicles", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestCreateVehicleValidation(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewVehicleHandler(db)

	e := echo.New()
	e.POST("/vehicles", h.CreateVehicle)

	tests := []struct {
		name string
		body string
	}{
		{"missing make", `{"model":"Yaris","license_plate":"AB-1","daily_rate":40}`},
		{"zero daily rate", `{"make":"Toyota","model":"Yaris","license_plate":"AB-1","daily_rate":0}`},
		{"bad status", `{"make":"Toyota","model":"Yaris","license_plate":"AB-1","daily_rate":40,"status":"scrapped"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performJSON(e, http.MethodPost, "/vehicles", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListVehiclesFilterByStatus(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewVehicleHandler(db)

	require.NoError(t, db.Create(&model.Vehicle{Make: "Toyota", Model: "Yaris", LicensePlate: "AA-1", Status: model.VehicleAvailable, DailyRate: 40}).Error)
	require.NoError(t, db.Create(&model.Vehicle{Make: "Ford", Model: "Focus", LicensePlate: "BB-2", Status: model.VehicleRented, DailyRate: 50}).Error)
	require.NoError(t, db.Create(&model.Vehicle{Make: "Opel", Model: "Corsa", LicensePlate: "CC-3", Status: model.VehicleMaintenance, DailyRate: 35}).Error)

	e := echo.New()
	e.GET("/vehicles", h.ListVehicles)

	rec := performJSON(e, http.MethodGet, "/vehicles?status=rented", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var vehicles []model.Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vehicles))
	require.Len(t, vehicles, 1)
	assert.Equal(t, "BB-2", vehicles[0].LicensePlate)

	rec = performJSON(e, http.MethodGet, "/vehicles", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vehicles))
	assert.Len(t, vehicles, 3)
}

func TestDeleteVehicleWithActiveRental(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewVehicleHandler(db)

	vehicle := model.Vehicle{Make: "Toyota", Model: "Yaris", LicensePlate: "DD-4", Status: model.VehicleRented, DailyRate: 40}
	require.NoError(t, db.Create(&vehicle).Error)
	customer := model.Customer{FirstName: "Jan", LastName: "Jansen", Email: "jan@example.com", DriverLicense: "DL-1"}
	require.NoError(t, db.Create(&customer).Error)
	require.NoError(t, db.Create(&model.Rental{
		VehicleID:  vehicle.ID,
		CustomerID: customer.ID,
		Status:     model.RentalActive,
	}).Error)

	e := echo.New()
	e.DELETE("/vehicles/:id", h.DeleteVehicle)

	rec := performJSON(e, http.MethodDelete, "/vehicles/"+strconv.Itoa(int(vehicle.ID)), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "currently rented")

	var count int64
	db.Model(&model.Vehicle{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteVehicle(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewVehicleHandler(db)

	vehicle := model.Vehicle{Make: "Toyota", Model: "Yaris", LicensePlate: "EE-5", Status: model.VehicleAvailable, DailyRate: 40}
	require.NoError(t, db.Create(&vehicle).Error)

	e := echo.New()
	e.DELETE("/vehicles/:id", h.DeleteVehicle)

	rec := performJSON(e, http.MethodDelete, "/vehicles/"+strconv.Itoa(int(vehicle.ID)), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&model.Vehicle{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
