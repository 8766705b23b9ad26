package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

// ModuleProgressSummary is the per-module line of a user's rollup.
type ModuleProgressSummary struct {
	ModuleID       uint       `json:"module_id"`
	ModuleTitle    string     `json:"module_title"`
	IsMandatory    bool       `json:"is_mandatory"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	AttemptsCount  int        `json:"attempts_count"`
	BestScore      *float64   `json:"best_score,omitempty"`
	IsPassed       bool       `json:"is_passed"`
}

// UserOnboardingProgress is the on-demand rollup over a user's applicable
// modules. Only mandatory modules feed the percentage denominator.
type UserOnboardingProgress struct {
	UserID                    uint                    `json:"user_id"`
	UserName                  string                  `json:"user_name"`
	Email                     string                  `json:"email"`
	OnboardingStatus          string                  `json:"onboarding_status"`
	TotalMandatoryModules     int                     `json:"total_mandatory_modules"`
	CompletedMandatoryModules int                     `json:"completed_mandatory_modules"`
	TotalModules              int                     `json:"total_modules"`
	CompletedModules          int                     `json:"completed_modules"`
	ProgressPercentage        float64                 `json:"progress_percentage"`
	Modules                   []ModuleProgressSummary `json:"modules"`
}

// ProgressDetail is the read model for a single (user, module) progress row.
type ProgressDetail struct {
	ProgressID     uint       `json:"progress_id"`
	UserID         uint       `json:"user_id"`
	UserName       string     `json:"user_name"`
	ModuleID       uint       `json:"module_id"`
	ModuleTitle    string     `json:"module_title"`
	Status         string     `json:"status"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	AttemptsCount  int        `json:"attempts_count"`
	BestScore      *float64   `json:"best_score,omitempty"`
	IsPassed       bool       `json:"is_passed"`
}

type ProgressService interface {
	GetUserProgress(ctx context.Context, userID uint) (*UserOnboardingProgress, error)
	GetModuleProgress(ctx context.Context, userID, moduleID uint) (*ProgressDetail, error)
	MarkModuleRead(ctx context.Context, userID, moduleID uint) (*ProgressDetail, error)
	ListProgress(ctx context.Context, userID, moduleID *uint) ([]*ProgressDetail, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	moduleRepo   repos.ModuleRepo
	progressRepo repos.ProgressRepo
	attemptRepo  repos.TestAttemptRepo
	logRepo      repos.ActionLogRepo
	now          func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	moduleRepo repos.ModuleRepo,
	progressRepo repos.ProgressRepo,
	attemptRepo repos.TestAttemptRepo,
	logRepo repos.ActionLogRepo,
) ProgressService {
	return &progressService{
		db:           db,
		log:          log.With("service", "ProgressService"),
		userRepo:     userRepo,
		moduleRepo:   moduleRepo,
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
		logRepo:      logRepo,
		now:          time.Now,
	}
}

func (ps *progressService) GetUserProgress(ctx context.Context, userID uint) (*UserOnboardingProgress, error) {
	user, err := ps.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("user %d", userID)
	}
	return ps.computeRollup(ctx, nil, user)
}

// computeRollup is the shared rollup used by both the progress endpoint and
// the reporting layer. Module summaries are ordered by module id.
func (ps *progressService) computeRollup(ctx context.Context, tx *gorm.DB, user *types.User) (*UserOnboardingProgress, error) {
	modules, err := ps.moduleRepo.ListApplicable(ctx, tx, user.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("listing applicable modules: %w", err)
	}
	progressRows, err := ps.progressRepo.ListByUser(ctx, tx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}
	stats, err := ps.attemptRepo.StatsByUser(ctx, tx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("loading attempt stats: %w", err)
	}

	progressByModule := make(map[uint]*types.UserModuleProgress, len(progressRows))
	for _, row := range progressRows {
		progressByModule[row.ModuleID] = row
	}

	rollup := &UserOnboardingProgress{
		UserID:           user.ID,
		UserName:         user.FullName,
		Email:            user.Email,
		OnboardingStatus: user.OnboardingStatus,
		TotalModules:     len(modules),
		Modules:          make([]ModuleProgressSummary, 0, len(modules)),
	}

	for _, module := range modules {
		summary := ModuleProgressSummary{
			ModuleID:    module.ID,
			ModuleTitle: module.Title,
			IsMandatory: module.IsMandatory,
			Status:      types.StatusNotStarted,
		}
		if row := progressByModule[module.ID]; row != nil {
			summary.Status = row.Status
			summary.StartDate = row.StartDate
			summary.CompletionDate = row.CompletionDate
		}
		if s, ok := stats[module.ID]; ok {
			summary.AttemptsCount = s.AttemptsCount
			summary.BestScore = s.BestScore
			summary.IsPassed = s.IsPassed()
		}
		if module.IsMandatory {
			rollup.TotalMandatoryModules++
			if summary.Status == types.StatusCompleted {
				rollup.CompletedMandatoryModules++
			}
		}
		if summary.Status == types.StatusCompleted {
			rollup.CompletedModules++
		}
		rollup.Modules = append(rollup.Modules, summary)
	}

	if rollup.TotalMandatoryModules > 0 {
		rollup.ProgressPercentage = round2(float64(rollup.CompletedMandatoryModules) / float64(rollup.TotalMandatoryModules) * 100)
	}
	return rollup, nil
}

func (ps *progressService) GetModuleProgress(ctx context.Context, userID, moduleID uint) (*ProgressDetail, error) {
	row, err := ps.progressRepo.GetByUserModule(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.NotFoundf("no progress for user %d module %d", userID, moduleID)
	}
	return ps.toDetail(ctx, nil, row)
}

// MarkModuleRead completes a non-quiz module directly. Idempotent: repeat
// calls refresh the completion date.
func (ps *progressService) MarkModuleRead(ctx context.Context, userID, moduleID uint) (*ProgressDetail, error) {
	var detail *ProgressDetail
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := ps.userRepo.GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.NotFoundf("user %d", userID)
		}
		module, err := ps.moduleRepo.GetByID(ctx, tx, moduleID)
		if err != nil {
			return err
		}
		if module == nil {
			return apperr.NotFoundf("module %d", moduleID)
		}

		now := ps.now().UTC()
		row, err := ps.progressRepo.EnsureRow(ctx, tx, &types.UserModuleProgress{
			UserID:    userID,
			ModuleID:  moduleID,
			Status:    types.StatusCompleted,
			StartDate: &now,
		})
		if err != nil {
			return fmt.Errorf("ensuring progress row: %w", err)
		}
		row.Status = types.StatusCompleted
		if row.StartDate == nil {
			row.StartDate = &now
		}
		row.CompletionDate = &now
		if err := ps.progressRepo.Update(ctx, tx, row); err != nil {
			return fmt.Errorf("updating progress: %w", err)
		}

		payload, err := json.Marshal(map[string]interface{}{"module_title": module.Title})
		if err != nil {
			return err
		}
		if _, err := ps.logRepo.Create(ctx, tx, &types.ActionLog{
			UserID:     userID,
			ActionType: ActionModuleRead,
			Timestamp:  now,
			Details:    datatypes.JSON(payload),
		}); err != nil {
			return err
		}

		detail, err = ps.toDetail(ctx, tx, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (ps *progressService) ListProgress(ctx context.Context, userID, moduleID *uint) ([]*ProgressDetail, error) {
	rows, err := ps.progressRepo.ListFiltered(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, err
	}
	details := make([]*ProgressDetail, 0, len(rows))
	for _, row := range rows {
		detail, err := ps.toDetail(ctx, nil, row)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (ps *progressService) toDetail(ctx context.Context, tx *gorm.DB, row *types.UserModuleProgress) (*ProgressDetail, error) {
	detail := &ProgressDetail{
		ProgressID:     row.ID,
		UserID:         row.UserID,
		ModuleID:       row.ModuleID,
		Status:         row.Status,
		StartDate:      row.StartDate,
		CompletionDate: row.CompletionDate,
	}
	if row.User != nil {
		detail.UserName = row.User.FullName
	} else if user, err := ps.userRepo.GetByID(ctx, tx, row.UserID); err == nil && user != nil {
		detail.UserName = user.FullName
	}
	if row.Module != nil {
		detail.ModuleTitle = row.Module.Title
	} else if module, err := ps.moduleRepo.GetByID(ctx, tx, row.ModuleID); err == nil && module != nil {
		detail.ModuleTitle = module.Title
	}
	attempts, err := ps.attemptRepo.ListByUserModule(ctx, tx, row.UserID, row.ModuleID)
	if err != nil {
		return nil, err
	}
	detail.AttemptsCount = len(attempts)
	for _, attempt := range attempts {
		if detail.BestScore == nil || attempt.Score > *detail.BestScore {
			score := attempt.Score
			detail.BestScore = &score
		}
		if attempt.IsPassed {
			detail.IsPassed = true
		}
	}
	return detail, nil
}
