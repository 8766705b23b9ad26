package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

func TestGetUserProgressMandatoryOnlyPercentage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)

	m1, correct1 := env.createModule(t, "Orientation", true, 50, 3, 2)
	_, _ = env.createModule(t, "Security", true, 50, 3, 2)
	optional, correctOpt := env.createModule(t, "Extras", false, 50, 3, 2)

	// One of two mandatory modules completed; the optional one too.
	_, err := env.testing.SubmitTest(ctx, user.ID, m1.ID, answersFor(correct1, 2))
	require.NoError(t, err)
	_, err = env.testing.SubmitTest(ctx, user.ID, optional.ID, answersFor(correctOpt, 2))
	require.NoError(t, err)

	rollup, err := env.progress.GetUserProgress(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, rollup.TotalModules)
	assert.Equal(t, 2, rollup.TotalMandatoryModules)
	assert.Equal(t, 1, rollup.CompletedMandatoryModules)
	assert.Equal(t, 2, rollup.CompletedModules)
	// Optional completion does not move the needle.
	assert.Equal(t, 50.0, rollup.ProgressPercentage)
}

func TestGetUserProgressNoModules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)

	rollup, err := env.progress.GetUserProgress(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rollup.ProgressPercentage)
	assert.Empty(t, rollup.Modules)
}

func TestGetUserProgressDepartmentScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eng := env.createDepartment(t, "Engineering")
	sales := env.createDepartment(t, "Sales")
	user := env.createUser(t, "Ada", "ada@example.com", eng.ID)

	shared, _ := env.createModule(t, "Orientation", true, 50, 3, 1)
	engOnly, _ := env.createModule(t, "Eng Onboarding", false, 50, 3, 1)
	require.NoError(t, env.db.Model(&types.Module{}).Where("id = ?", engOnly.ID).Update("department_id", eng.ID).Error)
	salesOnly, _ := env.createModule(t, "Sales Onboarding", false, 50, 3, 1)
	require.NoError(t, env.db.Model(&types.Module{}).Where("id = ?", salesOnly.ID).Update("department_id", sales.ID).Error)

	rollup, err := env.progress.GetUserProgress(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rollup.Modules, 2)
	assert.Equal(t, shared.ID, rollup.Modules[0].ModuleID)
	assert.Equal(t, engOnly.ID, rollup.Modules[1].ModuleID)
}

func TestGetUserProgressUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.progress.GetUserProgress(context.Background(), 9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMarkModuleRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, _ := env.createModule(t, "Handbook", true, 0, 1, 0)

	detail, err := env.progress.MarkModuleRead(ctx, user.ID, module.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, detail.Status)
	require.NotNil(t, detail.StartDate)
	require.NotNil(t, detail.CompletionDate)

	logs, err := env.logRepo.ListByUser(ctx, nil, user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ActionModuleRead, logs[0].ActionType)
}

func TestMarkModuleReadIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, _ := env.createModule(t, "Handbook", true, 0, 1, 0)

	first, err := env.progress.MarkModuleRead(ctx, user.ID, module.ID)
	require.NoError(t, err)
	second, err := env.progress.MarkModuleRead(ctx, user.ID, module.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ProgressID, second.ProgressID)
	assert.Equal(t, types.StatusCompleted, second.Status)
	// The start date is set once; the completion date refreshes.
	assert.True(t, first.StartDate.Equal(*second.StartDate))
	assert.False(t, second.CompletionDate.Before(*first.CompletionDate))

	var count int64
	require.NoError(t, env.db.Model(&types.UserModuleProgress{}).
		Where("user_id = ? AND module_id = ?", user.ID, module.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMarkModuleReadUnknownModule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)

	_, err := env.progress.MarkModuleRead(ctx, user.ID, 9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestProgressDetailAttemptStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 3, 2)

	_, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 1))
	require.NoError(t, err)
	_, err = env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 2))
	require.NoError(t, err)

	detail, err := env.progress.GetModuleProgress(ctx, user.ID, module.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.AttemptsCount)
	require.NotNil(t, detail.BestScore)
	assert.Equal(t, 100.0, *detail.BestScore)
	assert.True(t, detail.IsPassed)
}

func TestSubmitTestStartDatePreservedAcrossAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 3, 2)

	_, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 0))
	require.NoError(t, err)
	first, err := env.progressRepo.GetByUserModule(ctx, nil, user.ID, module.ID)
	require.NoError(t, err)
	require.NotNil(t, first.StartDate)

	time.Sleep(5 * time.Millisecond)
	_, err = env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 2))
	require.NoError(t, err)
	second, err := env.progressRepo.GetByUserModule(ctx, nil, user.ID, module.ID)
	require.NoError(t, err)
	assert.True(t, first.StartDate.Equal(*second.StartDate))
}
