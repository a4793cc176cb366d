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
)

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	DriverLicense string `json:"driver_license"`
}

// CustomerHandler serves the customer registry
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler creates a customer handler over the given store handle
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// ListCustomers returns all customers
func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	log := logger.FromContext(c)

	var customers []model.Customer
	if result := h.db.Find(&customers); result.Error != nil {
		log.Error("Failed to list customers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve customers"})
	}
	return c.JSON(http.StatusOK, customers)
}

// GetCustomer returns one customer by id
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var customer model.Customer
	if result := h.db.First(&customer, id); result.Error != nil {
		log.Error("Customer not found", zap.String("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer adds a customer
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	log := logger.FromContext(c)

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.DriverLicense == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name, last_name, email and driver_license are required"})
	}

	// Check uniqueness of email and driver license
	var count int64
	h.db.Model(&model.Customer{}).
		Where("email = ? OR driver_license = ?", req.Email, req.DriverLicense).
		Count(&count)
	if count > 0 {
		log.Warn("Customer email or driver license already in use",
			zap.String("email", req.Email),
			zap.String("driver_license", req.DriverLicense))
		return c.JSON(http.StatusConflict, echo.Map{"error": "email or driver license already in use"})
	}

	customer := model.Customer{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		DriverLicense: req.DriverLicense,
	}
	if result := h.db.Create(&customer); result.Error != nil {
		log.Error("Failed to create customer", zap.String("email", req.Email), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create customer"})
	}

	log.Info("Customer created",
		zap.String("customer_id", strconv.FormatUint(uint64(customer.ID), 10)),
		zap.String("email", customer.Email))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer edits a customer
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	var customer model.Customer
	if result := h.db.First(&customer, id); result.Error != nil {
		log.Error("Customer not found for update", zap.String("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	var count int64
	h.db.Model(&model.Customer{}).
		Where("(email = ? OR driver_license = ?) AND id != ?", req.Email, req.DriverLicense, customer.ID).
		Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email or driver license already in use"})
	}

	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.DriverLicense = req.DriverLicense

	if result := h.db.Save(&customer); result.Error != nil {
		log.Error("Failed to update customer", zap.String("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update customer"})
	}

	log.Info("Customer updated", zap.String("customer_id", id), zap.String("email", customer.Email))
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer unless they have an active rental
func (h *CustomerHandler) DeleteCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var customer model.Customer
	if result := h.db.First(&customer, id); result.Error != nil {
		log.Warn("Customer not found for deletion", zap.String("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	active, err := rental.HasActiveRentalForCustomer(h.db, customer.ID)
	if err != nil {
		log.Error("Failed to check active rentals", zap.String("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete customer"})
	}
	if active {
		log.Warn("Delete rejected: customer has active rentals", zap.String("customer_id", id))
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete customer with active rentals"})
	}

	if result := h.db.Delete(&customer); result.Error != nil {
		log.Error("Failed to delete customer", zap.String("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete customer"})
	}

	log.Info("Customer deleted", zap.String("customer_id", id), zap.String("email", customer.Email))
	return c.JSON(http.StatusOK, echo.Map{"message": "customer deleted successfully"})
}
