package bootstrap

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rental-service/internal/model"
)

func newSeedDBForTest(t *testing.T) *gorm.DB {
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

func TestSeedCreatesDefaults(t *testing.T) {
	db := newSeedDBForTest(t)
	require.NoError(t, Seed(db, zap.NewNop()))

	var permCount, roleCount int64
	db.Model(&model.Permission{}).Count(&permCount)
	db.Model(&model.Role{}).Count(&roleCount)
	assert.EqualValues(t, 14, permCount)
	assert.EqualValues(t, 4, roleCount)

	// The admin role holds every permission
	var admin model.Role
	require.NoError(t, db.Preload("Permissions").Where("name = ?", model.AdminRoleName).First(&admin).Error)
	assert.Len(t, admin.Permissions, 14)

	// The viewer role only holds view permissions
	var viewer model.Role
	require.NoError(t, db.Preload("Permissions").Where("name = ?", "viewer").First(&viewer).Error)
	require.NotEmpty(t, viewer.Permissions)
	for _, p := range viewer.Permissions {
		assert.True(t, strings.HasPrefix(p.Name, "view_"), "viewer holds %q", p.Name)
	}
}

func TestSeedCreatesAdminUser(t *testing.T) {
	db := newSeedDBForTest(t)
	require.NoError(t, Seed(db, zap.NewNop()))

	var admin model.User
	require.NoError(t, db.Preload("Roles").Where("username = ?", "admin").First(&admin).Error)
	assert.True(t, admin.IsActive)
	assert.True(t, admin.CheckPassword("admin123"))
	require.Len(t, admin.Roles, 1)
	assert.Equal(t, model.AdminRoleName, admin.Roles[0].Name)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newSeedDBForTest(t)
	require.NoError(t, Seed(db, zap.NewNop()))
	require.NoError(t, Seed(db, zap.NewNop()))

	var permCount, roleCount, userCount int64
	db.Model(&model.Permission{}).Count(&permCount)
	db.Model(&model.Role{}).Count(&roleCount)
	db.Model(&model.User{}).Count(&userCount)
	assert.EqualValues(t, 14, permCount)
	assert.EqualValues(t, 4, roleCount)
	assert.EqualValues(t, 1, userCount)
}

func TestSeedKeepsExistingAdminPassword(t *testing.T) {
	db := newSeedDBForTest(t)
	require.NoError(t, Seed(db, zap.NewNop()))

	var admin model.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	require.NoError(t, admin.SetPassword("rotated"))
	require.NoError(t, db.Save(&admin).Error)

	require.NoError(t, Seed(db, zap.NewNop()))

	var reloaded model.User
	require.NoError(t, db.Where("username = ?", "admin").First(&reloaded).Error)
	assert.True(t, reloaded.CheckPassword("rotated"))
	assert.False(t, reloaded.CheckPassword("admin123"))
}
