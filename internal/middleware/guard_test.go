package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rental-service/internal/model"
)

func newGuardDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Permission{}, &model.Role{}, &model.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedGuardUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	role := model.Role{
		Name: "staff",
		Permissions: []model.Permission{
			{Name: "view_vehicles"},
			{Name: "manage_rentals"},
		},
	}
	require.NoError(t, db.Create(&role).Error)
	user := model.User{
		Username: "staffer",
		Email:    "staffer@example.com",
		IsActive: true,
		Roles:    []model.Role{role},
	}
	require.NoError(t, user.SetPassword("pw"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// authAs injects the identity AuthMiddleware would have stored
func authAs(userID uint) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func perform(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequirePermission(t *testing.T) {
	db := newGuardDBForTest(t)
	user := seedGuardUser(t, db)
	guard := NewGuard(db)

	e := echo.New()
	e.Use(authAs(user.ID))
	e.GET("/granted", okHandler, guard.RequirePermission("view_vehicles"))
	e.GET("/denied", okHandler, guard.RequirePermission("manage_users"))

	assert.Equal(t, http.StatusOK, perform(e, "/granted").Code)

	rec := perform(e, "/denied")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required permission: manage_users")
}

func TestRequireRole(t *testing.T) {
	db := newGuardDBForTest(t)
	user := seedGuardUser(t, db)
	guard := NewGuard(db)

	e := echo.New()
	e.Use(authAs(user.ID))
	e.GET("/granted", okHandler, guard.RequireRole("staff"))
	e.GET("/denied", okHandler, guard.RequireRole("admin"))

	assert.Equal(t, http.StatusOK, perform(e, "/granted").Code)

	rec := perform(e, "/denied")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required role: admin")
}

func TestGuardWithoutIdentity(t *testing.T) {
	db := newGuardDBForTest(t)
	guard := NewGuard(db)

	e := echo.New()
	e.GET("/protected", okHandler, guard.RequirePermission("view_vehicles"))

	assert.Equal(t, http.StatusUnauthorized, perform(e, "/protected").Code)
}

func TestGuardUnknownUser(t *testing.T) {
	db := newGuardDBForTest(t)
	guard := NewGuard(db)

	e := echo.New()
	e.Use(authAs(9999))
	e.GET("/protected", okHandler, guard.RequirePermission("view_vehicles"))

	assert.Equal(t, http.StatusUnauthorized, perform(e, "/protected").Code)
}

func TestGuardDeniesInactiveUser(t *testing.T) {
	db := newGuardDBForTest(t)
	user := seedGuardUser(t, db)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	guard := NewGuard(db)

	e := echo.New()
	e.Use(authAs(user.ID))
	e.GET("/protected", okHandler, guard.RequirePermission("view_vehicles"))

	assert.Equal(t, http.StatusForbidden, perform(e, "/protected").Code)
}
