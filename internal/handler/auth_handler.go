package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/auth"
	"rental-service/internal/middleware"
	"rental-service/internal/model"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

// AuthHandler serves login, logout and profile
type AuthHandler struct {
	db *gorm.DB
}

// NewAuthHandler creates an auth handler over the given store handle
func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Login authenticates by username/password and issues a JWT
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.db.Preload("Roles").Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid username or password"})
	}

	if !user.CheckPassword(req.Password) {
		log.Error("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid username or password"})
	}

	if !user.IsActive {
		log.Warn("Login attempt on deactivated account", zap.String("username", req.Username))
		prometheus.RecordAuthError("account_inactive")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "this account has been deactivated, contact an administrator"})
	}

	// Stamp last login
	now := time.Now().UTC()
	if err := h.db.Model(&user).Update("last_login", now).Error; err != nil {
		log.Error("Failed to update last login", zap.Error(err))
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Username, user.Email, user.RoleNames())
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.Strings("roles", user.RoleNames()))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"full_name": user.FullName(),
			"roles":     user.RoleNames(),
		},
	})
}

// Logout ends the session from the service's point of view
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromContext(c)

	prometheus.DecreaseActiveTokens()

	if username, ok := c.Get(middleware.UsernameKey).(string); ok {
		log.Info("User logged out", zap.String("username", username))
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// Profile returns the current user with their roles
func (h *AuthHandler) Profile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	user, err := auth.LoadUser(h.db, userID)
	if err != nil {
		log.Error("Failed to load profile", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}
