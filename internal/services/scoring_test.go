package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onboardhq/onboarding-backend/internal/types"
)

func buildModule(passingScore int, questions ...*types.Question) *types.Module {
	return &types.Module{
		ID:           1,
		Title:        "Security Basics",
		PassingScore: passingScore,
		MaxAttempts:  3,
		Questions:    questions,
	}
}

func question(id uint, correctID uint, wrongIDs ...uint) *types.Question {
	q := &types.Question{
		ID:           id,
		QuestionText: "q",
		AnswerOptions: []*types.AnswerOption{
			{ID: correctID, AnswerText: "right", IsCorrect: true},
		},
	}
	for _, wrongID := range wrongIDs {
		q.AnswerOptions = append(q.AnswerOptions, &types.AnswerOption{ID: wrongID, AnswerText: "wrong"})
	}
	return q
}

func TestGradeAllCorrect(t *testing.T) {
	module := buildModule(70,
		question(1, 11, 12),
		question(2, 21, 22),
	)
	result := Grade(module, []SubmittedAnswer{
		{QuestionID: 1, AnswerID: 11},
		{QuestionID: 2, AnswerID: 21},
	})
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 2, result.CorrectCount)
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
	assert.Len(t, result.QuestionResults, 2)
}

func TestGradePartialAndRounding(t *testing.T) {
	module := buildModule(70,
		question(1, 11, 12),
		question(2, 21, 22),
		question(3, 31, 32),
	)
	result := Grade(module, []SubmittedAnswer{
		{QuestionID: 1, AnswerID: 11},
		{QuestionID: 2, AnswerID: 21},
		{QuestionID: 3, AnswerID: 32},
	})
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 2, result.CorrectCount)
	// 2/3 rounds to two decimals.
	assert.Equal(t, 66.67, result.Score)
	assert.False(t, result.Passed)
}

func TestGradeDenominatorIsFullQuestionSet(t *testing.T) {
	// Answering only one of two questions still divides by two.
	module := buildModule(50,
		question(1, 11, 12),
		question(2, 21, 22),
	)
	result := Grade(module, []SubmittedAnswer{
		{QuestionID: 1, AnswerID: 11},
	})
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 50.0, result.Score)
	assert.True(t, result.Passed)
}

func TestGradeUnknownQuestionIgnored(t *testing.T) {
	module := buildModule(70, question(1, 11, 12))
	result := Grade(module, []SubmittedAnswer{
		{QuestionID: 1, AnswerID: 11},
		{QuestionID: 999, AnswerID: 1},
	})
	assert.Equal(t, 1, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 100.0, result.Score)
	assert.Len(t, result.QuestionResults, 1)
}

func TestGradeCountsEachQuestionOnce(t *testing.T) {
	// Repeating a correct pair must not inflate the score past 100.
	module := buildModule(70,
		question(1, 11, 12),
		question(2, 21, 22),
	)
	result := Grade(module, []SubmittedAnswer{
		{QuestionID: 1, AnswerID: 11},
		{QuestionID: 1, AnswerID: 11},
		{QuestionID: 1, AnswerID: 11},
	})
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 50.0, result.Score)
	assert.False(t, result.Passed)
	assert.Len(t, result.QuestionResults, 1)
}

func TestGradeFirstAnswerPerQuestionWins(t *testing.T) {
	module := buildModule(100, question(1, 11, 12))
	result := Grade(module, []SubmittedAnswer{
		{QuestionID: 1, AnswerID: 12},
		{QuestionID: 1, AnswerID: 11},
	})
	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Passed)
	assert.Len(t, result.QuestionResults, 1)
}

func TestGradeZeroQuestions(t *testing.T) {
	module := buildModule(70)
	result := Grade(module, nil)
	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Passed)
}

func TestGradeZeroQuestionsZeroThresholdPasses(t *testing.T) {
	module := buildModule(0)
	result := Grade(module, nil)
	assert.Equal(t, 0.0, result.Score)
	assert.True(t, result.Passed)
}

func TestGradeSkipsUngradableQuestions(t *testing.T) {
	// A question with two correct options has no answer key and must not
	// count toward the total.
	broken := &types.Question{
		ID: 2,
		AnswerOptions: []*types.AnswerOption{
			{ID: 21, IsCorrect: true},
			{ID: 22, IsCorrect: true},
		},
	}
	module := buildModule(100, question(1, 11, 12), broken)
	result := Grade(module, []SubmittedAnswer{
		{QuestionID: 1, AnswerID: 11},
		{QuestionID: 2, AnswerID: 21},
	})
	assert.Equal(t, 1, result.TotalQuestions)
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
}

func TestGradeExactThresholdPasses(t *testing.T) {
	module := buildModule(50,
		question(1, 11, 12),
		question(2, 21, 22),
	)
	result := Grade(module, []SubmittedAnswer{
		{QuestionID: 1, AnswerID: 11},
		{QuestionID: 2, AnswerID: 22},
	})
	assert.Equal(t, 50.0, result.Score)
	assert.True(t, result.Passed)
}
