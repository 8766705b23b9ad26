package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

func newSeeder(t *testing.T) (*Seeder, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.Department{},
		&types.Role{},
		&types.Module{},
		&types.Question{},
		&types.AnswerOption{},
	))
	log := logger.NewNop()
	seeder := NewSeeder(db, log,
		repos.NewRoleRepo(db, log),
		repos.NewDepartmentRepo(db, log),
		repos.NewModuleRepo(db, log),
		repos.NewQuestionRepo(db, log),
	)
	return seeder, db
}

func TestSeederLoadsEmbeddedFixtures(t *testing.T) {
	seeder, db := newSeeder(t)
	require.NoError(t, seeder.Run(context.Background()))

	var roles, depts, modules, questions int64
	require.NoError(t, db.Model(&types.Role{}).Count(&roles).Error)
	require.NoError(t, db.Model(&types.Department{}).Count(&depts).Error)
	require.NoError(t, db.Model(&types.Module{}).Count(&modules).Error)
	require.NoError(t, db.Model(&types.Question{}).Count(&questions).Error)
	assert.Equal(t, int64(4), roles)
	assert.Equal(t, int64(3), depts)
	assert.Equal(t, int64(3), modules)
	assert.Equal(t, int64(5), questions)

	var engModule types.Module
	require.NoError(t, db.Where("title = ?", "Engineering Onboarding").First(&engModule).Error)
	require.NotNil(t, engModule.DepartmentID)
}

func TestSeederIsIdempotent(t *testing.T) {
	seeder, db := newSeeder(t)
	ctx := context.Background()
	require.NoError(t, seeder.Run(ctx))
	require.NoError(t, seeder.Run(ctx))

	var modules int64
	require.NoError(t, db.Model(&types.Module{}).Count(&modules).Error)
	assert.Equal(t, int64(3), modules)
}

func TestSeederRejectsMalformedYAML(t *testing.T) {
	seeder, _ := newSeeder(t)
	err := seeder.RunWith(context.Background(), []byte("modules: [unclosed"))
	assert.Error(t, err)
}
