package services

import (
	"math"

	"github.com/onboardhq/onboarding-backend/internal/types"
)

// SubmittedAnswer is one (question, selected option) pair from a submission.
type SubmittedAnswer struct {
	QuestionID uint `json:"question_id" binding:"required"`
	AnswerID   uint `json:"answer_id" binding:"required"`
}

// QuestionResult reports the grading of a single answered question.
type QuestionResult struct {
	QuestionID       uint   `json:"question_id"`
	QuestionText     string `json:"question_text"`
	SelectedAnswerID *uint  `json:"selected_answer_id"`
	CorrectAnswerID  uint   `json:"correct_answer_id"`
	IsCorrect        bool   `json:"is_correct"`
}

// GradeResult is the outcome of grading one submission against a module.
type GradeResult struct {
	TotalQuestions  int
	CorrectCount    int
	Score           float64
	Passed          bool
	QuestionResults []QuestionResult
}

// Grade scores a submission against a module's question set. Pure function:
// it only reads the module. Answers referencing unknown question ids are
// silently ignored, and only the first answer per question counts, so a
// question can never contribute more than once. The denominator is the
// module's full question set (every question with exactly one correct
// option), not the number of submitted answers.
func Grade(module *types.Module, answers []SubmittedAnswer) GradeResult {
	type key struct {
		correctID uint
		text      string
	}
	correctByQuestion := make(map[uint]key, len(module.Questions))
	for _, q := range module.Questions {
		var correctID uint
		correct := 0
		for _, opt := range q.AnswerOptions {
			if opt.IsCorrect {
				correctID = opt.ID
				correct++
			}
		}
		if correct != 1 {
			// No resolvable answer key; the question cannot be graded and
			// does not count toward the total.
			continue
		}
		correctByQuestion[q.ID] = key{correctID: correctID, text: q.QuestionText}
	}

	result := GradeResult{TotalQuestions: len(correctByQuestion)}
	graded := make(map[uint]bool, len(answers))
	for _, answer := range answers {
		k, ok := correctByQuestion[answer.QuestionID]
		if !ok || graded[answer.QuestionID] {
			continue
		}
		graded[answer.QuestionID] = true
		isCorrect := answer.AnswerID == k.correctID
		if isCorrect {
			result.CorrectCount++
		}
		selected := answer.AnswerID
		result.QuestionResults = append(result.QuestionResults, QuestionResult{
			QuestionID:       answer.QuestionID,
			QuestionText:     k.text,
			SelectedAnswerID: &selected,
			CorrectAnswerID:  k.correctID,
			IsCorrect:        isCorrect,
		})
	}

	if result.TotalQuestions > 0 {
		result.Score = round2(float64(result.CorrectCount) / float64(result.TotalQuestions) * 100)
	}
	result.Passed = result.Score >= float64(module.PassingScore)
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
