package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rental-service/internal/model"
)

func userWith(roles ...model.Role) *model.User {
	return &model.User{Username: "tester", IsActive: true, Roles: roles}
}

func TestAuthorizeByRole(t *testing.T) {
	user := userWith(model.Role{Name: "manager"})

	assert.True(t, Authorize(user, RoleRequirement("manager")).Allowed)

	decision := Authorize(user, RoleRequirement("admin"))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "missing required role: admin", decision.Reason)
}

func TestAuthorizeByPermission(t *testing.T) {
	user := userWith(
		model.Role{Name: "staff", Permissions: []model.Permission{
			{Name: "view_vehicles"},
			{Name: "manage_rentals"},
		}},
		model.Role{Name: "viewer", Permissions: []model.Permission{
			{Name: "view_reports"},
		}},
	)

	// Permissions are the union over all held roles
	assert.True(t, Authorize(user, PermissionRequirement("manage_rentals")).Allowed)
	assert.True(t, Authorize(user, PermissionRequirement("view_reports")).Allowed)

	decision := Authorize(user, PermissionRequirement("manage_users"))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "missing required permission: manage_users", decision.Reason)
}

func TestAuthorizeDeniesNilAndInactiveUsers(t *testing.T) {
	assert.False(t, Authorize(nil, RoleRequirement("admin")).Allowed)

	inactive := userWith(model.Role{Name: "admin"})
	inactive.IsActive = false
	decision := Authorize(inactive, RoleRequirement("admin"))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "authentication required", decision.Reason)
}

func TestAuthorizeDeniesEmptyRequirement(t *testing.T) {
	user := userWith(model.Role{Name: "admin"})
	assert.False(t, Authorize(user, Requirement{}).Allowed)
}

func TestRoleDoesNotImplyPermission(t *testing.T) {
	// Holding a role named like a permission grants nothing
	user := userWith(model.Role{Name: "view_vehicles"})
	assert.False(t, Authorize(user, PermissionRequirement("view_vehicles")).Allowed)
}
