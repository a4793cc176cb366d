package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-service/internal/middleware"
	"rental-service/internal/model"
)

// actingAs injects the identity the JWT middleware would have stored
func actingAs(userID uint) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserIDKey, userID)
			return next(c)
		}
	}
}

func TestDeleteUser(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewUserHandler(db)

	admin := model.User{Username: "admin", Email: "admin@example.com", IsActive: true}
	require.NoError(t, admin.SetPassword("pw"))
	require.NoError(t, db.Create(&admin).Error)
	other := model.User{Username: "other", Email: "other@example.com", IsActive: true}
	require.NoError(t, other.SetPassword("pw"))
	require.NoError(t, db.Create(&other).Error)

	e := echo.New()
	e.Use(actingAs(admin.ID))
	e.DELETE("/users/:id", h.DeleteUser)

	rec := performJSON(e, http.MethodDelete, "/users/"+strconv.Itoa(int(other.ID)), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteUserSelfRejected(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewUserHandler(db)

	admin := model.User{Username: "admin", Email: "admin@example.com", IsActive: true}
	require.NoError(t, admin.SetPassword("pw"))
	require.NoError(t, db.Create(&admin).Error)

	e := echo.New()
	e.Use(actingAs(admin.ID))
	e.DELETE("/users/:id", h.DeleteUser)

	rec := performJSON(e, http.MethodDelete, "/users/"+strconv.Itoa(int(admin.ID)), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot delete your own account")

	// The account survives the rejected delete
	var reloaded model.User
	require.NoError(t, db.First(&reloaded, admin.ID).Error)
	assert.Equal(t, "admin", reloaded.Username)
}

func TestDeleteUnknownUser(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewUserHandler(db)

	e := echo.New()
	e.Use(actingAs(1))
	e.DELETE("/users/:id", h.DeleteUser)

	rec := performJSON(e, http.MethodDelete, "/users/4242", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
