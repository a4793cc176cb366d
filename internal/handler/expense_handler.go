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

// ExpenseRequest defines the structure for expense creation/update requests
type ExpenseRequest struct {
	ExpenseType string  `json:"expense_type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// ExpenseHandler serves vehicle expenses, scoped under a vehicle
type ExpenseHandler struct {
	db *gorm.DB
}

// NewExpenseHandler creates an expense handler over the given store handle
func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{db: db}
}

// ListExpenses returns all expenses of a vehicle, newest first
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	log := logger.FromContext(c)
	vehicleID := c.Param("vehicle_id")

	if err := h.db.First(&model.Vehicle{}, vehicleID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}

	var expenses []model.VehicleExpense
	result := h.db.Where("vehicle_id = ?", vehicleID).Order("date desc").Find(&expenses)
	if result.Error != nil {
		log.Error("Failed to list expenses", zap.String("vehicle_id", vehicleID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve expenses"})
	}
	return c.JSON(http.StatusOK, expenses)
}

// CreateExpense records a cost against a vehicle
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	log := logger.FromContext(c)
	vehicleID := c.Param("vehicle_id")

	var vehicle model.Vehicle
	if err := h.db.First(&vehicle, vehicleID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.ExpenseType == "" || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expense_type and a positive amount are required"})
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be formatted as YYYY-MM-DD"})
	}

	expense := model.VehicleExpense{
		VehicleID:   vehicle.ID,
		ExpenseType: req.ExpenseType,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
	}
	if result := h.db.Create(&expense); result.Error != nil {
		log.Error("Failed to create expense", zap.String("vehicle_id", vehicleID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create expense"})
	}

	log.Info("Expense created",
		zap.Uint("expense_id", expense.ID),
		zap.Uint("vehicle_id", vehicle.ID),
		zap.String("expense_type", expense.ExpenseType),
		zap.Float64("amount", expense.Amount))
	return c.JSON(http.StatusCreated, expense)
}

// UpdateExpense edits an expense belonging to the path vehicle
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	log := logger.FromContext(c)
	vehicleID := c.Param("vehicle_id")
	expenseID := c.Param("expense_id")

	expense, err := h.expenseForVehicle(vehicleID, expenseID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "expense not found"})
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("expense_id", expenseID), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.ExpenseType == "" || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expense_type and a positive amount are required"})
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be formatted as YYYY-MM-DD"})
	}

	expense.ExpenseType = req.ExpenseType
	expense.Amount = req.Amount
	expense.Date = date
	expense.Description = req.Description

	if result := h.db.Save(expense); result.Error != nil {
		log.Error("Failed to update expense", zap.String("expense_id", expenseID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update expense"})
	}

	log.Info("Expense updated", zap.String("expense_id", expenseID))
	return c.JSON(http.StatusOK, expense)
}

// DeleteExpense removes an expense belonging to the path vehicle
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	log := logger.FromContext(c)
	vehicleID := c.Param("vehicle_id")
	expenseID := c.Param("expense_id")

	expense, err := h.expenseForVehicle(vehicleID, expenseID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "expense not found"})
	}

	if result := h.db.Delete(expense); result.Error != nil {
		log.Error("Failed to delete expense", zap.String("expense_id", expenseID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete expense"})
	}

	log.Info("Expense deleted", zap.String("expense_id", expenseID))
	return c.JSON(http.StatusOK, echo.Map{"message": "expense deleted successfully"})
}

// expenseForVehicle loads an expense and verifies it belongs to the vehicle
func (h *ExpenseHandler) expenseForVehicle(vehicleID, expenseID string) (*model.VehicleExpense, error) {
	var expense model.VehicleExpense
	err := h.db.Where("id = ? AND vehicle_id = ?", expenseID, vehicleID).First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}
