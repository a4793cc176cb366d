package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-service/internal/model"
)

func TestDeleteRole(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewRoleHandler(db)

	role := model.Role{Name: "temp", Description: "Temporary role"}
	require.NoError(t, db.Create(&role).Error)

	e := echo.New()
	e.DELETE("/roles/:id", h.DeleteRole)

	rec := performJSON(e, http.MethodDelete, "/roles/"+strconv.Itoa(int(role.ID)), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&model.Role{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDeleteAdminRoleRejected(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewRoleHandler(db)

	admin := model.Role{Name: model.AdminRoleName, Description: "Administrator with full access"}
	require.NoError(t, db.Create(&admin).Error)

	e := echo.New()
	e.DELETE("/roles/:id", h.DeleteRole)

	rec := performJSON(e, http.MethodDelete, "/roles/"+strconv.Itoa(int(admin.ID)), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin role cannot be deleted")

	// The row survives the rejected delete
	var reloaded model.Role
	require.NoError(t, db.First(&reloaded, admin.ID).Error)
	assert.Equal(t, model.AdminRoleName, reloaded.Name)
}

func TestDeleteUnknownRole(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewRoleHandler(db)

	e := echo.New()
	e.DELETE("/roles/:id", h.DeleteRole)

	rec := performJSON(e, http.MethodDelete, "/roles/4242", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
