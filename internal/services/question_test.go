package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
)

// noShuffle keeps the stored order so assertions stay deterministic.
func noShuffle(n int, swap func(i, j int)) {}

// reverseShuffle reverses the slice, a stand-in for a real permutation.
func reverseShuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

func newQuestionService(env *testEnv, shuffle ShuffleFunc) QuestionService {
	return NewQuestionServiceWithShuffle(env.db, logger.NewNop(), env.moduleRepo, env.questionRepo, shuffle)
}

func TestCreateQuestionValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newQuestionService(env, noShuffle)
	module, _ := env.createModule(t, "Orientation", true, 70, 3, 0)

	cases := []struct {
		name    string
		options []AnswerOptionInput
	}{
		{"too few options", []AnswerOptionInput{{AnswerText: "only", IsCorrect: true}}},
		{"no correct option", []AnswerOptionInput{{AnswerText: "a"}, {AnswerText: "b"}}},
		{"two correct options", []AnswerOptionInput{{AnswerText: "a", IsCorrect: true}, {AnswerText: "b", IsCorrect: true}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, CreateQuestionInput{
				ModuleID:      module.ID,
				QuestionText:  "q",
				AnswerOptions: tc.options,
			})
			assert.True(t, errors.Is(err, apperr.ErrValidation))
		})
	}
}

func TestCreateQuestionUnknownModule(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuestionService(env, noShuffle)
	_, err := svc.Create(context.Background(), CreateQuestionInput{
		ModuleID:     9999,
		QuestionText: "q",
		AnswerOptions: []AnswerOptionInput{
			{AnswerText: "a", IsCorrect: true},
			{AnswerText: "b"},
		},
	})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGenerateTestStripsCorrectness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newQuestionService(env, noShuffle)
	module, correct := env.createModule(t, "Orientation", true, 70, 3, minTestQuestions)

	questions, err := svc.GenerateTest(ctx, module.ID)
	require.NoError(t, err)
	require.Len(t, questions, minTestQuestions)
	for _, q := range questions {
		assert.Len(t, q.AnswerOptions, 3)
		_, known := correct[q.QuestionID]
		assert.True(t, known)
	}
}

func TestGenerateTestTooFewQuestions(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuestionService(env, noShuffle)
	module, _ := env.createModule(t, "Orientation", true, 70, 3, minTestQuestions-1)

	_, err := svc.GenerateTest(context.Background(), module.ID)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestGenerateTestAppliesShuffle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	module, _ := env.createModule(t, "Orientation", true, 70, 3, minTestQuestions)

	plain, err := newQuestionService(env, noShuffle).GenerateTest(ctx, module.ID)
	require.NoError(t, err)
	reversed, err := newQuestionService(env, reverseShuffle).GenerateTest(ctx, module.ID)
	require.NoError(t, err)

	require.Len(t, reversed, len(plain))
	for i := range plain {
		assert.Equal(t, plain[i].QuestionID, reversed[len(reversed)-1-i].QuestionID)
	}
	// Options are shuffled per question with the same permutation.
	first := reversed[len(reversed)-1]
	assert.Equal(t, plain[0].AnswerOptions[0], first.AnswerOptions[len(first.AnswerOptions)-1])
}

func TestUpdateQuestionReplacesOptions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newQuestionService(env, noShuffle)
	_, correct := env.createModule(t, "Orientation", true, 70, 3, 1)

	var questionID uint
	for id := range correct {
		questionID = id
	}
	updated, err := svc.Update(ctx, questionID, UpdateQuestionInput{
		AnswerOptions: []AnswerOptionInput{
			{AnswerText: "new right", IsCorrect: true},
			{AnswerText: "new wrong"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, updated.AnswerOptions, 2)

	stored, err := svc.GetByID(ctx, questionID)
	require.NoError(t, err)
	require.Len(t, stored.AnswerOptions, 2)
	assert.Equal(t, "new right", stored.AnswerOptions[0].AnswerText)
}

func TestDeleteQuestionNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := newQuestionService(env, noShuffle)
	err := svc.Delete(context.Background(), 9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
