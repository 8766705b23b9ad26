package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

func TestSubmitTestPassingAttempt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 3, 4)

	result, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 4))
	require.NoError(t, err)

	assert.Equal(t, 1, result.AttemptNumber)
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.IsPassed)
	assert.False(t, result.CanRetry)
	assert.Equal(t, 2, result.RemainingAttempts)
	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 4, result.CorrectAnswers)

	row, err := env.progressRepo.GetByUserModule(ctx, nil, user.ID, module.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, types.StatusCompleted, row.Status)
	assert.NotNil(t, row.StartDate)
	assert.NotNil(t, row.CompletionDate)
}

func TestSubmitTestFailingAttemptKeepsInProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 3, 4)

	result, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 1))
	require.NoError(t, err)

	assert.Equal(t, 25.0, result.Score)
	assert.False(t, result.IsPassed)
	assert.True(t, result.CanRetry)
	assert.Equal(t, 2, result.RemainingAttempts)

	row, err := env.progressRepo.GetByUserModule(ctx, nil, user.ID, module.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, types.StatusInProgress, row.Status)
	assert.NotNil(t, row.StartDate)
	assert.Nil(t, row.CompletionDate)
}

func TestSubmitTestAttemptNumbersAreMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 5, 2)

	for want := 1; want <= 3; want++ {
		result, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 0))
		require.NoError(t, err)
		assert.Equal(t, want, result.AttemptNumber)
	}
	attempts, err := env.attemptRepo.ListByUserModule(ctx, nil, user.ID, module.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 3)
}

func TestSubmitTestExhaustedAttemptsFailsModule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 2, 2)

	_, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 0))
	require.NoError(t, err)
	result, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 0))
	require.NoError(t, err)
	assert.False(t, result.CanRetry)
	assert.Equal(t, 0, result.RemainingAttempts)

	row, err := env.progressRepo.GetByUserModule(ctx, nil, user.ID, module.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, row.Status)

	// Limit reached: further submissions are rejected before grading.
	_, err = env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAttemptLimit))
	assert.Equal(t, 422, apperr.Status(err))
}

func TestSubmitTestPassOnLastAttemptCompletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 2, 2)

	_, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 0))
	require.NoError(t, err)
	result, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 2))
	require.NoError(t, err)
	assert.True(t, result.IsPassed)

	row, err := env.progressRepo.GetByUserModule(ctx, nil, user.ID, module.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, row.Status)
}

func TestSubmitTestUnknownModuleAndUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 3, 2)

	_, err := env.testing.SubmitTest(ctx, user.ID, 9999, nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = env.testing.SubmitTest(ctx, 9999, module.ID, answersFor(correct, 0))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSubmitTestWritesActionLog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	user := env.createUser(t, "Ada", "ada@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 3, 2)

	_, err := env.testing.SubmitTest(ctx, user.ID, module.ID, answersFor(correct, 2))
	require.NoError(t, err)

	logs, err := env.logRepo.ListByUser(ctx, nil, user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ActionTestSubmitted, logs[0].ActionType)
	assert.Contains(t, string(logs[0].Details), "Orientation")
}

func TestSubmitTestSecondUserIndependentAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dept := env.createDepartment(t, "Engineering")
	alice := env.createUser(t, "Alice", "alice@example.com", dept.ID)
	bob := env.createUser(t, "Bob", "bob@example.com", dept.ID)
	module, correct := env.createModule(t, "Orientation", true, 70, 2, 2)

	_, err := env.testing.SubmitTest(ctx, alice.ID, module.ID, answersFor(correct, 0))
	require.NoError(t, err)
	result, err := env.testing.SubmitTest(ctx, bob.ID, module.ID, answersFor(correct, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, result.AttemptNumber)
}

func TestGetAttemptNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.testing.GetAttempt(context.Background(), 42)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
