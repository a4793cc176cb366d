package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rental-service/internal/model"
)

func seedReportFixtures(t *testing.T, db *gorm.DB, today time.Time) {
	t.Helper()

	vehicles := []model.Vehicle{
		{Make: "Toyota", Model: "Yaris", LicensePlate: "RPT-1", Status: model.VehicleAvailable, DailyRate: 40},
		{Make: "Ford", Model: "Focus", LicensePlate: "RPT-2", Status: model.VehicleRented, DailyRate: 50},
		{Make: "Opel", Model: "Corsa", LicensePlate: "RPT-3", Status: model.VehicleRented, DailyRate: 60},
		{Make: "Fiat", Model: "Panda", LicensePlate: "RPT-4", Status: model.VehicleMaintenance, DailyRate: 30},
	}
	for i := range vehicles {
		require.NoError(t, db.Create(&vehicles[i]).Error)
	}

	customer := model.Customer{FirstName: "Jan", LastName: "Jansen", Email: "jan@example.com", DriverLicense: "DL-1"}
	require.NoError(t, db.Create(&customer).Error)

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	rentals := []model.Rental{
		// due today
		{VehicleID: vehicles[1].ID, CustomerID: customer.ID, StartDate: monthStart,
			EndDate: today, TotalCost: 100, Status: model.RentalActive},
		// overdue
		{VehicleID: vehicles[2].ID, CustomerID: customer.ID, StartDate: monthStart,
			EndDate: today.AddDate(0, 0, -2), TotalCost: 50, Status: model.RentalActive},
		// completed this month
		{VehicleID: vehicles[0].ID, CustomerID: customer.ID, StartDate: monthStart,
			EndDate: monthStart.AddDate(0, 0, 2), TotalCost: 150, Status: model.RentalCompleted},
		// cancelled, excluded from revenue
		{VehicleID: vehicles[0].ID, CustomerID: customer.ID, StartDate: monthStart,
			EndDate: monthStart.AddDate(0, 0, 1), TotalCost: 999, Status: model.RentalCancelled},
	}
	for i := range rentals {
		require.NoError(t, db.Create(&rentals[i]).Error)
	}

	expenses := []model.VehicleExpense{
		{VehicleID: vehicles[0].ID, ExpenseType: "maintenance", Amount: 120, Date: monthStart},
		{VehicleID: vehicles[0].ID, ExpenseType: "maintenance", Amount: 80, Date: monthStart},
		{VehicleID: vehicles[1].ID, ExpenseType: "fuel", Amount: 55, Date: monthStart},
	}
	for i := range expenses {
		require.NoError(t, db.Create(&expenses[i]).Error)
	}
}

func TestDashboard(t *testing.T) {
	db := newHandlerDBForTest(t)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	seedReportFixtures(t, db, today)
	h := NewReportHandler(db)

	e := echo.New()
	e.GET("/dashboard", h.Dashboard)

	rec := performJSON(e, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Vehicles struct {
			Total       int64 `json:"total"`
			Available   int64 `json:"available"`
			Rented      int64 `json:"rented"`
			Maintenance int64 `json:"maintenance"`
		} `json:"vehicles"`
		TotalCustomers int64          `json:"total_customers"`
		ActiveRentals  int64          `json:"active_rentals"`
		RecentRentals  []model.Rental `json:"recent_rentals"`
		RentalsDue     []model.Rental `json:"rentals_due"`
		Overdue        []model.Rental `json:"overdue_rentals"`
		ExpensesByType []struct {
			ExpenseType string  `json:"expense_type"`
			Total       float64 `json:"total"`
		} `json:"expenses_by_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.EqualValues(t, 4, resp.Vehicles.Total)
	assert.EqualValues(t, 1, resp.Vehicles.Available)
	assert.EqualValues(t, 2, resp.Vehicles.Rented)
	assert.EqualValues(t, 1, resp.Vehicles.Maintenance)
	assert.EqualValues(t, 1, resp.TotalCustomers)
	assert.EqualValues(t, 2, resp.ActiveRentals)

	assert.Len(t, resp.RecentRentals, 4)

	require.Len(t, resp.RentalsDue, 1)
	assert.Equal(t, model.RentalActive, resp.RentalsDue[0].Status)
	require.Len(t, resp.Overdue, 1)
	assert.True(t, resp.Overdue[0].EndDate.Before(today))

	totals := make(map[string]float64, len(resp.ExpensesByType))
	for _, e := range resp.ExpensesByType {
		totals[e.ExpenseType] = e.Total
	}
	assert.Equal(t, float64(200), totals["maintenance"])
	assert.Equal(t, float64(55), totals["fuel"])
}

func TestReports(t *testing.T) {
	db := newHandlerDBForTest(t)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	seedReportFixtures(t, db, today)
	h := NewReportHandler(db)

	e := echo.New()
	e.GET("/reports", h.Reports)

	rec := performJSON(e, http.MethodGet, "/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		VehiclesByStatus []struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		} `json:"vehicles_by_status"`
		RentalsPerCustomer []struct {
			CustomerID uint   `json:"customer_id"`
			FirstName  string `json:"first_name"`
			Count      int64  `json:"count"`
		} `json:"rentals_per_customer"`
		RevenueByMonth []struct {
			Month   string  `json:"month"`
			Revenue float64 `json:"revenue"`
		} `json:"revenue_by_month"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	byStatus := make(map[string]int64, len(resp.VehiclesByStatus))
	for _, s := range resp.VehiclesByStatus {
		byStatus[s.Status] = s.Count
	}
	assert.EqualValues(t, 1, byStatus["available"])
	assert.EqualValues(t, 2, byStatus["rented"])
	assert.EqualValues(t, 1, byStatus["maintenance"])

	require.Len(t, resp.RentalsPerCustomer, 1)
	assert.Equal(t, "Jan", resp.RentalsPerCustomer[0].FirstName)
	assert.EqualValues(t, 2, resp.RentalsPerCustomer[0].Count)

	// Six buckets, oldest first, ending at the current month
	require.Len(t, resp.RevenueByMonth, 6)
	current := resp.RevenueByMonth[5]
	assert.Equal(t, time.Now().UTC().Format("2006-01"), current.Month)
	// Active (100 + 50) and completed (150) count; cancelled does not
	assert.Equal(t, float64(300), current.Revenue)
	for _, m := range resp.RevenueByMonth[:5] {
		assert.Zero(t, m.Revenue, "month %s", m.Month)
	}
}
