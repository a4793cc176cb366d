package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/model"
	"rental-service/pkg/logger"
)

// ReportHandler aggregates fleet and rental figures
type ReportHandler struct {
	db *gorm.DB
}

// NewReportHandler creates a report handler
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type typeAmount struct {
	ExpenseType string  `json:"expense_type"`
	Total       float64 `json:"total"`
}

// Dashboard returns the landing-page summary: fleet counts, recent and
// due rentals, and recent expenses
func (h *ReportHandler) Dashboard(c echo.Context) error {
	log := logger.FromContext(c)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	var totalVehicles, availableVehicles, rentedVehicles, maintenanceVehicles int64
	h.db.Model(&model.Vehicle{}).Count(&totalVehicles)
	h.db.Model(&model.Vehicle{}).Where("status = ?", model.VehicleAvailable).Count(&availableVehicles)
	h.db.Model(&model.Vehicle{}).Where("status = ?", model.VehicleRented).Count(&rentedVehicles)
	h.db.Model(&model.Vehicle{}).Where("status = ?", model.VehicleMaintenance).Count(&maintenanceVehicles)

	var totalCustomers, activeRentals int64
	h.db.Model(&model.Customer{}).Count(&totalCustomers)
	h.db.Model(&model.Rental{}).Where("status = ?", model.RentalActive).Count(&activeRentals)

	var recentRentals []model.Rental
	if err := h.db.Preload("Vehicle").Preload("Customer").
		Order("created_at DESC").Limit(5).Find(&recentRentals).Error; err != nil {
		log.Error("Failed to load recent rentals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build dashboard"})
	}

	var dueToday []model.Rental
	h.db.Preload("Vehicle").Preload("Customer").
		Where("status = ? AND end_date = ?", model.RentalActive, today).
		Find(&dueToday)

	var overdue []model.Rental
	h.db.Preload("Vehicle").Preload("Customer").
		Where("status = ? AND end_date < ?", model.RentalActive, today).
		Find(&overdue)

	var recentExpenses []model.VehicleExpense
	h.db.Preload("Vehicle").Order("date DESC").Limit(5).Find(&recentExpenses)

	var expensesByType []typeAmount
	h.db.Model(&model.VehicleExpense{}).
		Select("expense_type, SUM(amount) AS total").
		Group("expense_type").
		Scan(&expensesByType)

	return c.JSON(http.StatusOK, echo.Map{
		"vehicles": echo.Map{
			"total":       totalVehicles,
			"available":   availableVehicles,
			"rented":      rentedVehicles,
			"maintenance": maintenanceVehicles,
		},
		"total_customers":  totalCustomers,
		"active_rentals":   activeRentals,
		"recent_rentals":   recentRentals,
		"rentals_due":      dueToday,
		"overdue_rentals":  overdue,
		"recent_expenses":  recentExpenses,
		"expenses_by_type": expensesByType,
	})
}

// Reports returns fleet status distribution, active rentals per customer
// and monthly revenue for the last six months
func (h *ReportHandler) Reports(c echo.Context) error {
	log := logger.FromContext(c)

	var vehiclesByStatus []statusCount
	if err := h.db.Model(&model.Vehicle{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&vehiclesByStatus).Error; err != nil {
		log.Error("Failed to aggregate fleet status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build reports"})
	}

	type customerRentals struct {
		CustomerID uint   `json:"customer_id"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Count      int64  `json:"count"`
	}
	var rentalsPerCustomer []customerRentals
	h.db.Model(&model.Rental{}).
		Select("rentals.customer_id, customers.first_name, customers.last_name, COUNT(*) AS count").
		Joins("JOIN customers ON customers.id = rentals.customer_id").
		Where("rentals.status = ?", model.RentalActive).
		Group("rentals.customer_id, customers.first_name, customers.last_name").
		Scan(&rentalsPerCustomer)

	// Revenue per calendar month of the rental start date, last six
	// months, over rentals that were not cancelled
	type monthRevenue struct {
		Month   string  `json:"month"`
		Revenue float64 `json:"revenue"`
	}
	now := time.Now().UTC()
	revenueByMonth := make([]monthRevenue, 0, 6)
	for i := 5; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		var revenue float64
		h.db.Model(&model.Rental{}).
			Select("COALESCE(SUM(total_cost), 0)").
			Where("status IN ?", []model.RentalStatus{model.RentalActive, model.RentalCompleted}).
			Where("start_date >= ? AND start_date < ?", monthStart, monthEnd).
			Scan(&revenue)

		revenueByMonth = append(revenueByMonth, monthRevenue{
			Month:   monthStart.Format("2006-01"),
			Revenue: revenue,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"vehicles_by_status":   vehiclesByStatus,
		"rentals_per_customer": rentalsPerCustomer,
		"revenue_by_month":     revenueByMonth,
	})
}
