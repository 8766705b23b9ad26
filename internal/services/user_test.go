package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

func newUserService(env *testEnv) UserService {
	roleRepo := repos.NewRoleRepo(env.db, logger.NewNop())
	return NewUserService(env.db, logger.NewNop(), env.userRepo, env.deptRepo, roleRepo)
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	svc := newUserService(env)

	view, err := svc.Create(ctx, CreateUserInput{
		FullName:     "  Ada Lovelace ",
		Email:        " Ada@Example.COM ",
		DepartmentID: dept.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", view.FullName)
	assert.Equal(t, "ada@example.com", view.Email)
	assert.Equal(t, types.StatusNotStarted, view.OnboardingStatus)
	assert.Equal(t, "Engineering", view.DepartmentName)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	svc := newUserService(env)

	_, err := svc.Create(ctx, CreateUserInput{FullName: "Ada", Email: "ada@example.com", DepartmentID: dept.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateUserInput{FullName: "Imposter", Email: "ADA@example.com", DepartmentID: dept.ID})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateUserUnknownDepartment(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(env)
	_, err := svc.Create(context.Background(), CreateUserInput{FullName: "Ada", Email: "ada@example.com", DepartmentID: 9999})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCreateUserWithRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	require.NoError(t, env.db.Create(&types.Role{RoleName: "NewHire"}).Error)
	require.NoError(t, env.db.Create(&types.Role{RoleName: "Mentor"}).Error)
	svc := newUserService(env)

	view, err := svc.Create(ctx, CreateUserInput{
		FullName:     "Ada",
		Email:        "ada@example.com",
		DepartmentID: dept.ID,
		Roles:        []string{"NewHire"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"NewHire"}, view.Roles)
}

func TestUpdateUserSelfMentorRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	svc := newUserService(env)

	_, err := svc.Update(ctx, user.ID, UpdateUserInput{MentorID: &user.ID})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestUpdateUserStatusValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	svc := newUserService(env)

	bogus := "Snoozing"
	_, err := svc.Update(ctx, user.ID, UpdateUserInput{Status: &bogus})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	valid := types.StatusCompleted
	view, err := svc.Update(ctx, user.ID, UpdateUserInput{Status: &valid})
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, view.OnboardingStatus)
}

func TestDeleteUserClearsMentorReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	mentor := env.createUser(t, "Grace", "grace@example.com", dept.ID)
	mentee := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	require.NoError(t, env.db.Model(&types.User{}).Where("id = ?", mentee.ID).Update("mentor_id", mentor.ID).Error)
	svc := newUserService(env)

	require.NoError(t, svc.Delete(ctx, mentor.ID))

	var reloaded types.User
	require.NoError(t, env.db.First(&reloaded, mentee.ID).Error)
	assert.Nil(t, reloaded.MentorID)
}

func TestDepartmentDeleteBlockedWithUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	env.createUser(t, "Ada", "ada@example.com", dept.ID)
	svc := NewDepartmentService(env.db, logger.NewNop(), env.deptRepo)

	err := svc.Delete(ctx, dept.ID)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestDepartmentCreateDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewDepartmentService(env.db, logger.NewNop(), env.deptRepo)

	_, err := svc.Create(ctx, CreateDepartmentInput{Name: "Engineering"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateDepartmentInput{Name: " Engineering "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestModuleThresholdValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewModuleService(env.db, logger.NewNop(), env.moduleRepo, env.deptRepo)

	_, err := svc.Create(ctx, CreateModuleInput{Title: "Bad", PassingScore: 101, MaxAttempts: 3})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, CreateModuleInput{Title: "Bad", PassingScore: 70, MaxAttempts: 0})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	module, err := svc.Create(ctx, CreateModuleInput{Title: "Good", PassingScore: 70, MaxAttempts: 3})
	require.NoError(t, err)
	assert.Equal(t, "Good", module.Title)
}
