// Package auth implements the role/permission authorization check.
//
// A requirement is satisfied either by a role the user holds directly or
// by a permission reachable through any of the user's roles. Permission
// resolution is an explicit union scan over the loaded role-permission
// associations; the first match wins. Denial is a normal outcome carried
// in a Decision value, never an error.
package auth

import (
	"errors"

	"gorm.io/gorm"

	"rental-service/internal/model"
)

// ErrUserNotFound is returned when the acting user cannot be loaded
var ErrUserNotFound = errors.New("user not found")

// Requirement names either a role or a permission
type Requirement struct {
	Role       string
	Permission string
}

// RoleRequirement builds a requirement satisfied by holding the named role
func RoleRequirement(name string) Requirement {
	return Requirement{Role: name}
}

// PermissionRequirement builds a requirement satisfied by any held role
// granting the named permission
func PermissionRequirement(name string) Requirement {
	return Requirement{Permission: name}
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with a user-visible reason
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// HasRole reports whether the user holds the named role
func HasRole(user *model.User, roleName string) bool {
	for _, r := range user.Roles {
		if r.Name == roleName {
			return true
		}
	}
	return false
}

// HasPermission reports whether any of the user's roles grants the named
// permission
func HasPermission(user *model.User, permissionName string) bool {
	for _, r := range user.Roles {
		for _, p := range r.Permissions {
			if p.Name == permissionName {
				return true
			}
		}
	}
	return false
}

// Authorize decides whether an authenticated user satisfies a requirement.
// A nil or inactive user is always denied.
func Authorize(user *model.User, req Requirement) Decision {
	if user == nil || !user.IsActive {
		return Deny("authentication required")
	}
	if req.Role != "" {
		if HasRole(user, req.Role) {
			return Allow
		}
		return Deny("missing required role: " + req.Role)
	}
	if req.Permission != "" {
		if HasPermission(user, req.Permission) {
			return Allow
		}
		return Deny("missing required permission: " + req.Permission)
	}
	return Deny("empty requirement")
}

// LoadUser loads a user with roles and role permissions preloaded, so the
// authorization check runs over in-memory sets instead of lazy traversal.
func LoadUser(db *gorm.DB, userID uint) (*model.User, error) {
	var user model.User
	err := db.Preload("Roles.Permissions").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
