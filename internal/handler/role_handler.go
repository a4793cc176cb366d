package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/model"
	"rental-service/pkg/logger"
)

// RoleRequest defines the structure for role creation/update requests
type RoleRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PermissionIDs []uint `json:"permission_ids"`
}

// RoleHandler serves role administration
type RoleHandler struct {
	db *gorm.DB
}

// NewRoleHandler creates a role handler over the given store handle
func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{db: db}
}

// ListRoles returns all roles with their permissions
func (h *RoleHandler) ListRoles(c echo.Context) error {
	log := logger.FromContext(c)

	var roles []model.Role
	if result := h.db.Preload("Permissions").Find(&roles); result.Error != nil {
		log.Error("Failed to list roles", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve roles"})
	}
	return c.JSON(http.StatusOK, roles)
}

// GetRole returns one role by id
func (h *RoleHandler) GetRole(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var role model.Role
	if result := h.db.Preload("Permissions").First(&role, id); result.Error != nil {
		log.Error("Role not found", zap.String("role_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
	}
	return c.JSON(http.StatusOK, role)
}

// CreateRole creates a role with permission grants
func (h *RoleHandler) CreateRole(c echo.Context) error {
	log := logger.FromContext(c)

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var count int64
	h.db.Model(&model.Role{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		log.Warn("Role name already in use", zap.String("name", req.Name))
		return c.JSON(http.StatusConflict, echo.Map{"error": "role name already in use"})
	}

	permissions, err := h.loadPermissions(req.PermissionIDs)
	if err != nil {
		log.Error("Failed to load permissions", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission selection"})
	}

	role := model.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: permissions,
	}
	if result := h.db.Create(&role); result.Error != nil {
		log.Error("Failed to create role", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create role"})
	}

	log.Info("Role created", zap.Uint("role_id", role.ID), zap.String("name", role.Name))
	return c.JSON(http.StatusCreated, role)
}

// UpdateRole edits a role and replaces its permission grants
func (h *RoleHandler) UpdateRole(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("role_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var role model.Role
	if result := h.db.First(&role, id); result.Error != nil {
		log.Error("Role not found for update", zap.String("role_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
	}

	var count int64
	h.db.Model(&model.Role{}).Where("name = ? AND id != ?", req.Name, role.ID).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "role name already in use"})
	}

	permissions, err := h.loadPermissions(req.PermissionIDs)
	if err != nil {
		log.Error("Failed to load permissions", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission selection"})
	}

	role.Name = req.Name
	role.Description = req.Description
	if result := h.db.Save(&role); result.Error != nil {
		log.Error("Failed to update role", zap.String("role_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role"})
	}
	if err := h.db.Model(&role).Association("Permissions").Replace(permissions); err != nil {
		log.Error("Failed to update role permissions", zap.String("role_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role permissions"})
	}

	log.Info("Role updated", zap.String("role_id", id), zap.String("name", role.Name))
	return c.JSON(http.StatusOK, role)
}

// DeleteRole destroys a role. The admin role is never destroyed.
func (h *RoleHandler) DeleteRole(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var role model.Role
	if result := h.db.First(&role, id); result.Error != nil {
		log.Warn("Role not found for deletion", zap.String("role_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
	}

	if role.Name == model.AdminRoleName {
		log.Warn("Attempt to delete the admin role rejected")
		return c.JSON(http.StatusConflict, echo.Map{"error": "the admin role cannot be deleted"})
	}

	if result := h.db.Delete(&role); result.Error != nil {
		log.Error("Failed to delete role", zap.String("role_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete role"})
	}

	log.Info("Role deleted", zap.String("role_id", id), zap.String("name", role.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "role deleted successfully"})
}

func (h *RoleHandler) loadPermissions(permissionIDs []uint) ([]model.Permission, error) {
	if len(permissionIDs) == 0 {
		return nil, nil
	}
	var permissions []model.Permission
	if err := h.db.Where("id IN ?", permissionIDs).Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}
