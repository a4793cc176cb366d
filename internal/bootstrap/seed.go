// Package bootstrap seeds the default permissions, roles and the initial
// admin account. Seeding is idempotent and safe to run on every startup.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/model"
)

var defaultPermissions = map[string]string{
	"view_dashboard":   "Can view the dashboard",
	"manage_vehicles":  "Can manage vehicles",
	"view_vehicles":    "Can view vehicles",
	"manage_customers": "Can manage customers",
	"view_customers":   "Can view customers",
	"manage_rentals":   "Can manage rentals",
	"view_rentals":     "Can view rentals",
	"manage_expenses":  "Can manage expenses",
	"view_expenses":    "Can view expenses",
	"manage_documents": "Can manage documents",
	"view_documents":   "Can view documents",
	"view_reports":     "Can view reports",
	"manage_users":     "Can manage users",
	"manage_roles":     "Can manage roles",
}

var defaultRoles = map[string]string{
	"admin":   "Administrator with full access",
	"manager": "Manager with extended rights",
	"staff":   "Employee with standard rights",
	"viewer":  "Read-only user",
}

// Permission grants per role; the admin role receives every permission
var rolePermissionGrants = map[string][]string{
	"manager": {
		"view_dashboard", "manage_vehicles", "view_vehicles",
		"manage_customers", "view_customers", "manage_rentals",
		"view_rentals", "manage_expenses", "view_expenses",
		"manage_documents", "view_documents", "view_reports",
	},
	"staff": {
		"view_dashboard", "view_vehicles", "view_customers",
		"manage_rentals", "view_rentals", "view_expenses",
		"view_documents",
	},
	"viewer": {
		"view_dashboard", "view_vehicles", "view_customers",
		"view_rentals", "view_expenses", "view_documents",
	},
}

// Seed creates default permissions, roles, role grants and the initial
// admin user when they do not exist yet
func Seed(db *gorm.DB, log *zap.Logger) error {
	for name, description := range defaultPermissions {
		perm := model.Permission{Name: name, Description: description}
		if err := db.Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
			return fmt.Errorf("seed permission %q: %w", name, err)
		}
	}

	for name, description := range defaultRoles {
		role := model.Role{Name: name, Description: description}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %q: %w", name, err)
		}
	}

	if err := assignRolePermissions(db); err != nil {
		return err
	}

	if err := seedAdminUser(db, log); err != nil {
		return err
	}

	log.Info("Default roles and permissions seeded")
	return nil
}

func assignRolePermissions(db *gorm.DB) error {
	var allPermissions []model.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	byName := make(map[string]model.Permission, len(allPermissions))
	for _, p := range allPermissions {
		byName[p.Name] = p
	}

	for roleName := range defaultRoles {
		var role model.Role
		if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
			return fmt.Errorf("load role %q: %w", roleName, err)
		}

		var grants []model.Permission
		if roleName == model.AdminRoleName {
			grants = allPermissions
		} else {
			for _, permName := range rolePermissionGrants[roleName] {
				if p, ok := byName[permName]; ok {
					grants = append(grants, p)
				}
			}
		}

		if err := db.Model(&role).Association("Permissions").Replace(grants); err != nil {
			return fmt.Errorf("assign permissions to role %q: %w", roleName, err)
		}
	}
	return nil
}

func seedAdminUser(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	var adminRole model.Role
	if err := db.Where("name = ?", model.AdminRoleName).First(&adminRole).Error; err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}

	admin := model.User{
		Username:  "admin",
		Email:     "admin@rental-service.local",
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		Roles:     []model.Role{adminRole},
	}
	// Default bootstrap password, meant to be changed after first login
	if err := admin.SetPassword("admin123"); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Warn("Bootstrap admin user created with default password",
		zap.String("username", admin.Username))
	return nil
}
