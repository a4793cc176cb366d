package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/auth"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

// Guard builds role/permission middleware on top of the authorization
// check. It replaces decorator-style route guards with an explicit
// interceptor: the requirement is evaluated before the handler runs and
// a deny answers 403 with a user-visible message.
type Guard struct {
	db *gorm.DB
}

// NewGuard creates a guard backed by the given store handle
func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// RequireRole allows the request only when the current user holds the role
func (g *Guard) RequireRole(roleName string) echo.MiddlewareFunc {
	return g.require(auth.RoleRequirement(roleName))
}

// RequirePermission allows the request only when one of the current
// user's roles grants the permission
func (g *Guard) RequirePermission(permissionName string) echo.MiddlewareFunc {
	return g.require(auth.PermissionRequirement(permissionName))
}

func (g *Guard) require(req auth.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			userID, ok := CurrentUserID(c)
			if !ok {
				prometheus.RecordAuthError("missing_identity")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			user, err := auth.LoadUser(g.db, userID)
			if err != nil {
				log.Error("Failed to load user for authorization", zap.Uint("user_id", userID), zap.Error(err))
				prometheus.RecordAuthError("user_not_found")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			decision := auth.Authorize(user, req)
			if !decision.Allowed {
				log.Warn("Authorization denied",
					zap.String("username", user.Username),
					zap.String("role", req.Role),
					zap.String("permission", req.Permission),
					zap.String("reason", decision.Reason))
				prometheus.RecordAuthError("permission_denied")
				return c.JSON(http.StatusForbidden, echo.Map{"error": decision.Reason})
			}

			// Make the loaded user available to handlers
			c.Set("current_user", user)

			return next(c)
		}
	}
}
