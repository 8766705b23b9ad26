package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

const (
	ActionTestSubmitted = "Test submitted"
	ActionModuleRead    = "Module read"
)

// TestResult is the response payload for a graded submission.
type TestResult struct {
	AttemptID         int64            `json:"attempt_id"`
	ModuleID          uint             `json:"module_id"`
	ModuleTitle       string           `json:"module_title"`
	AttemptDate       time.Time        `json:"attempt_date"`
	AttemptNumber     int              `json:"attempt_number"`
	TotalQuestions    int              `json:"total_questions"`
	CorrectAnswers    int              `json:"correct_answers"`
	Score             float64          `json:"score"`
	IsPassed          bool             `json:"is_passed"`
	CanRetry          bool             `json:"can_retry"`
	RemainingAttempts int              `json:"remaining_attempts"`
	QuestionResults   []QuestionResult `json:"question_results"`
}

// AttemptSummary annotates a stored attempt with display names.
type AttemptSummary struct {
	AttemptID     int64     `json:"attempt_id"`
	UserID        uint      `json:"user_id"`
	UserName      string    `json:"user_name"`
	ModuleID      uint      `json:"module_id"`
	ModuleTitle   string    `json:"module_title"`
	AttemptDate   time.Time `json:"attempt_date"`
	AttemptNumber int       `json:"attempt_number"`
	Score         float64   `json:"score"`
	IsPassed      bool      `json:"is_passed"`
}

type TestingService interface {
	SubmitTest(ctx context.Context, userID, moduleID uint, answers []SubmittedAnswer) (*TestResult, error)
	GetAttempt(ctx context.Context, attemptID int64) (*AttemptSummary, error)
	ListUserAttempts(ctx context.Context, userID uint) ([]*AttemptSummary, error)
	ListModuleAttempts(ctx context.Context, userID, moduleID uint) ([]*AttemptSummary, error)
}

type testingService struct {
	db           *gorm.DB
	log          *logger.Logger
	moduleRepo   repos.ModuleRepo
	userRepo     repos.UserRepo
	attemptRepo  repos.TestAttemptRepo
	progressRepo repos.ProgressRepo
	logRepo      repos.ActionLogRepo
	now          func() time.Time
}

func NewTestingService(
	db *gorm.DB,
	log *logger.Logger,
	moduleRepo repos.ModuleRepo,
	userRepo repos.UserRepo,
	attemptRepo repos.TestAttemptRepo,
	progressRepo repos.ProgressRepo,
	logRepo repos.ActionLogRepo,
) TestingService {
	return &testingService{
		db:           db,
		log:          log.With("service", "TestingService"),
		moduleRepo:   moduleRepo,
		userRepo:     userRepo,
		attemptRepo:  attemptRepo,
		progressRepo: progressRepo,
		logRepo:      logRepo,
		now:          time.Now,
	}
}

// SubmitTest grades a submission and records the attempt, the progress
// transition and the audit entry as one transaction. The attempt-limit check
// runs before anything else. A racing submission that steals our attempt
// number trips the (user, module, attempt_number) unique index; the whole
// transaction is then retried once with a fresh count.
func (ts *testingService) SubmitTest(ctx context.Context, userID, moduleID uint, answers []SubmittedAnswer) (*TestResult, error) {
	result, err := ts.submitOnce(ctx, userID, moduleID, answers)
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		ts.log.Warn("Attempt number collision, retrying submission", "user_id", userID, "module_id", moduleID)
		result, err = ts.submitOnce(ctx, userID, moduleID, answers)
		if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflictf("concurrent submissions for user %d module %d", userID, moduleID)
		}
	}
	return result, err
}

func (ts *testingService) submitOnce(ctx context.Context, userID, moduleID uint, answers []SubmittedAnswer) (*TestResult, error) {
	var result *TestResult
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module, err := ts.moduleRepo.GetByIDWithQuestions(ctx, tx, moduleID)
		if err != nil {
			return fmt.Errorf("loading module: %w", err)
		}
		if module == nil {
			return apperr.NotFoundf("module %d", moduleID)
		}
		user, err := ts.userRepo.GetByID(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("loading user: %w", err)
		}
		if user == nil {
			return apperr.NotFoundf("user %d", userID)
		}

		priorAttempts, err := ts.attemptRepo.CountByUserModule(ctx, tx, userID, moduleID)
		if err != nil {
			return fmt.Errorf("counting attempts: %w", err)
		}
		if priorAttempts >= int64(module.MaxAttempts) {
			return apperr.AttemptLimitf("max attempts reached (%d)", module.MaxAttempts)
		}

		graded := Grade(module, answers)
		now := ts.now().UTC()
		attemptNumber := int(priorAttempts) + 1

		attempt := &types.TestAttempt{
			UserID:         userID,
			ModuleID:       moduleID,
			AttemptDate:    now,
			AttemptNumber:  attemptNumber,
			Score:          graded.Score,
			IsPassed:       graded.Passed,
			TotalQuestions: graded.TotalQuestions,
			CorrectAnswers: graded.CorrectCount,
		}
		if _, err := ts.attemptRepo.Create(ctx, tx, attempt); err != nil {
			return err
		}

		progress, err := ts.progressRepo.EnsureRow(ctx, tx, &types.UserModuleProgress{
			UserID:    userID,
			ModuleID:  moduleID,
			Status:    types.StatusInProgress,
			StartDate: &now,
		})
		if err != nil {
			return fmt.Errorf("ensuring progress row: %w", err)
		}
		if progress.StartDate == nil {
			progress.StartDate = &now
		}
		switch {
		case graded.Passed:
			progress.Status = types.StatusCompleted
			progress.CompletionDate = &now
		case attemptNumber >= module.MaxAttempts:
			progress.Status = types.StatusFailed
		}
		if err := ts.progressRepo.Update(ctx, tx, progress); err != nil {
			return fmt.Errorf("updating progress: %w", err)
		}

		if err := ts.appendLog(ctx, tx, userID, ActionTestSubmitted, map[string]interface{}{
			"module_title":   module.Title,
			"attempt_number": attemptNumber,
			"score":          graded.Score,
			"is_passed":      graded.Passed,
		}, now); err != nil {
			return err
		}

		result = &TestResult{
			AttemptID:         attempt.ID,
			ModuleID:          moduleID,
			ModuleTitle:       module.Title,
			AttemptDate:       now,
			AttemptNumber:     attemptNumber,
			TotalQuestions:    graded.TotalQuestions,
			CorrectAnswers:    graded.CorrectCount,
			Score:             graded.Score,
			IsPassed:          graded.Passed,
			CanRetry:          !graded.Passed && attemptNumber < module.MaxAttempts,
			RemainingAttempts: maxInt(0, module.MaxAttempts-attemptNumber),
			QuestionResults:   graded.QuestionResults,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ts *testingService) appendLog(ctx context.Context, tx *gorm.DB, userID uint, actionType string, details map[string]interface{}, at time.Time) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshaling log details: %w", err)
	}
	_, err = ts.logRepo.Create(ctx, tx, &types.ActionLog{
		UserID:     userID,
		ActionType: actionType,
		Timestamp:  at,
		Details:    datatypes.JSON(payload),
	})
	return err
}

func (ts *testingService) GetAttempt(ctx context.Context, attemptID int64) (*AttemptSummary, error) {
	attempt, err := ts.attemptRepo.GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, apperr.NotFoundf("attempt %d", attemptID)
	}
	return attemptToSummary(attempt), nil
}

func (ts *testingService) ListUserAttempts(ctx context.Context, userID uint) ([]*AttemptSummary, error) {
	attempts, err := ts.attemptRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	return attemptsToSummaries(attempts), nil
}

func (ts *testingService) ListModuleAttempts(ctx context.Context, userID, moduleID uint) ([]*AttemptSummary, error) {
	attempts, err := ts.attemptRepo.ListByUserModule(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, err
	}
	return attemptsToSummaries(attempts), nil
}

func attemptToSummary(attempt *types.TestAttempt) *AttemptSummary {
	summary := &AttemptSummary{
		AttemptID:     attempt.ID,
		UserID:        attempt.UserID,
		ModuleID:      attempt.ModuleID,
		AttemptDate:   attempt.AttemptDate,
		AttemptNumber: attempt.AttemptNumber,
		Score:         attempt.Score,
		IsPassed:      attempt.IsPassed,
	}
	if attempt.User != nil {
		summary.UserName = attempt.User.FullName
	}
	if attempt.Module != nil {
		summary.ModuleTitle = attempt.Module.Title
	}
	return summary
}

func attemptsToSummaries(attempts []*types.TestAttempt) []*AttemptSummary {
	summaries := make([]*AttemptSummary, 0, len(attempts))
	for _, attempt := range attempts {
		summaries = append(summaries, attemptToSummary(attempt))
	}
	return summaries
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
