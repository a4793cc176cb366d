package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/model"
	"rental-service/pkg/logger"
)

// PermissionRequest defines the structure for permission creation/update requests
type PermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PermissionHandler serves permission administration
type PermissionHandler struct {
	db *gorm.DB
}

// NewPermissionHandler creates a permission handler over the given store handle
func NewPermissionHandler(db *gorm.DB) *PermissionHandler {
	return &PermissionHandler{db: db}
}

// ListPermissions returns all permissions
func (h *PermissionHandler) ListPermissions(c echo.Context) error {
	log := logger.FromContext(c)

	var permissions []model.Permission
	if result := h.db.Find(&permissions); result.Error != nil {
		log.Error("Failed to list permissions", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve permissions"})
	}
	return c.JSON(http.StatusOK, permissions)
}

// CreatePermission creates a permission
func (h *PermissionHandler) CreatePermission(c echo.Context) error {
	log := logger.FromContext(c)

	var req PermissionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var count int64
	h.db.Model(&model.Permission{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		log.Warn("Permission name already in use", zap.String("name", req.Name))
		return c.JSON(http.StatusConflict, echo.Map{"error": "permission name already in use"})
	}

	permission := model.Permission{Name: req.Name, Description: req.Description}
	if result := h.db.Create(&permission); result.Error != nil {
		log.Error("Failed to create permission", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create permission"})
	}

	log.Info("Permission created", zap.Uint("permission_id", permission.ID), zap.String("name", permission.Name))
	return c.JSON(http.StatusCreated, permission)
}

// UpdatePermission edits a permission
func (h *PermissionHandler) UpdatePermission(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req PermissionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("permission_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var permission model.Permission
	if result := h.db.First(&permission, id); result.Error != nil {
		log.Error("Permission not found for update", zap.String("permission_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
	}

	var count int64
	h.db.Model(&model.Permission{}).Where("name = ? AND id != ?", req.Name, permission.ID).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "permission name already in use"})
	}

	permission.Name = req.Name
	permission.Description = req.Description
	if result := h.db.Save(&permission); result.Error != nil {
		log.Error("Failed to update permission", zap.String("permission_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update permission"})
	}

	log.Info("Permission updated", zap.String("permission_id", id), zap.String("name", permission.Name))
	return c.JSON(http.StatusOK, permission)
}

// DeletePermission destroys a permission
func (h *PermissionHandler) DeletePermission(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := h.db.Delete(&model.Permission{}, id)
	if result.Error != nil {
		log.Error("Failed to delete permission", zap.String("permission_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete permission"})
	}
	if result.RowsAffected == 0 {
		log.Warn("Permission not found for deletion", zap.String("permission_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
	}

	log.Info("Permission deleted", zap.String("permission_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "permission deleted successfully"})
}
