package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-service/internal/model"
	"rental-service/pkg/config"
	"rental-service/pkg/jwtutil"
)

func init() {
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func TestLogin(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewAuthHandler(db)

	role := model.Role{Name: "manager"}
	require.NoError(t, db.Create(&role).Error)
	user := model.User{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		IsActive:  true,
		Roles:     []model.Role{role},
	}
	require.NoError(t, user.SetPassword("s3cret"))
	require.NoError(t, db.Create(&user).Error)

	e := echo.New()
	e.POST("/auth/login", h.Login)

	rec := performJSON(e, http.MethodPost, "/auth/login", `{"username":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string   `json:"username"`
			FullName string   `json:"full_name"`
			Roles    []string `json:"roles"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "Alice Smith", resp.User.FullName)
	assert.Equal(t, []string{"manager"}, resp.User.Roles)

	claims, err := jwtutil.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, []string{"manager"}, claims.Roles)

	// Login stamps last_login
	var reloaded model.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.NotNil(t, reloaded.LastLogin)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewAuthHandler(db)

	user := model.User{Username: "bob", Email: "bob@example.com", IsActive: true}
	require.NoError(t, user.SetPassword("right"))
	require.NoError(t, db.Create(&user).Error)

	e := echo.New()
	e.POST("/auth/login", h.Login)

	rec := performJSON(e, http.MethodPost, "/auth/login", `{"username":"bob","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")
}

func TestLoginUnknownUser(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewAuthHandler(db)

	e := echo.New()
	e.POST("/auth/login", h.Login)

	rec := performJSON(e, http.MethodPost, "/auth/login", `{"username":"ghost","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	db := newHandlerDBForTest(t)
	h := NewAuthHandler(db)

	user := model.User{Username: "carol", Email: "carol@example.com", IsActive: false}
	require.NoError(t, user.SetPassword("s3cret"))
	require.NoError(t, db.Create(&user).Error)

	e := echo.New()
	e.POST("/auth/login", h.Login)

	rec := performJSON(e, http.MethodPost, "/auth/login", `{"username":"carol","password":"s3cret"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "deactivated")
}
