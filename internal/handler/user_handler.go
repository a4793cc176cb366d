package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/middleware"
	"rental-service/internal/model"
	"rental-service/pkg/logger"
)

// UserRequest defines the structure for user creation/update requests
type UserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
	RoleIDs   []uint `json:"role_ids"`
}

// UserHandler serves user administration
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler creates a user handler over the given store handle
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// ListUsers returns all users with their roles
func (h *UserHandler) ListUsers(c echo.Context) error {
	log := logger.FromContext(c)

	var users []model.User
	if result := h.db.Preload("Roles").Find(&users); result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns one user by id
func (h *UserHandler) GetUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var user model.User
	if result := h.db.Preload("Roles").First(&user, id); result.Error != nil {
		log.Error("User not found", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser creates a user with role assignments
func (h *UserHandler) CreateUser(c echo.Context) error {
	log := logger.FromContext(c)

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
	}

	// Check uniqueness of username and email
	var count int64
	h.db.Model(&model.User{}).Where("username = ? OR email = ?", req.Username, req.Email).Count(&count)
	if count > 0 {
		log.Warn("Username or email already in use",
			zap.String("username", req.Username),
			zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already in use"})
	}

	roles, err := h.loadRoles(req.RoleIDs)
	if err != nil {
		log.Error("Failed to load roles", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role selection"})
	}

	user := model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
		Roles:     roles,
	}
	if err := user.SetPassword(req.Password); err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	if result := h.db.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.String("username", req.Username), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	log.Info("User created",
		zap.String("user_id", strconv.FormatUint(uint64(user.ID), 10)),
		zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser edits a user; the password changes only when provided
func (h *UserHandler) UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("user_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Username == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and email are required"})
	}

	var user model.User
	if result := h.db.Preload("Roles").First(&user, id); result.Error != nil {
		log.Error("User not found for update", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var count int64
	h.db.Model(&model.User{}).
		Where("(username = ? OR email = ?) AND id != ?", req.Username, req.Email, user.ID).
		Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already in use"})
	}

	roles, err := h.loadRoles(req.RoleIDs)
	if err != nil {
		log.Error("Failed to load roles", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role selection"})
	}

	user.Username = req.Username
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.IsActive = req.IsActive
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
		}
	}

	if result := h.db.Save(&user); result.Error != nil {
		log.Error("Failed to update user", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}
	if err := h.db.Model(&user).Association("Roles").Replace(roles); err != nil {
		log.Error("Failed to update user roles", zap.String("user_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user roles"})
	}

	log.Info("User updated", zap.String("user_id", id), zap.String("username", user.Username))
	return c.JSON(http.StatusOK, user)
}

// DeleteUser destroys a user. Self-deletion is rejected.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var user model.User
	if result := h.db.First(&user, id); result.Error != nil {
		log.Warn("User not found for deletion", zap.String("user_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if currentID, ok := middleware.CurrentUserID(c); ok && currentID == user.ID {
		log.Warn("Self-deletion rejected", zap.Uint("user_id", user.ID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "you cannot delete your own account"})
	}

	if result := h.db.Delete(&user); result.Error != nil {
		log.Error("Failed to delete user", zap.String("user_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}

	log.Info("User deleted", zap.String("user_id", id), zap.String("username", user.Username))
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted successfully"})
}

func (h *UserHandler) loadRoles(roleIDs []uint) ([]model.Role, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	var roles []model.Role
	if err := h.db.Where("id IN ?", roleIDs).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
