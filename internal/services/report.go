package services

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

// defaultReportQuestionCount approximates the question count for attempts
// recorded before total_questions was persisted on the attempt row.
const defaultReportQuestionCount = 10

// departmentReportConcurrency caps the per-user rollup fan-out.
const departmentReportConcurrency = 4

// OnboardingProgressReport is the per-user report: the rollup plus identity
// fields and the earliest start / latest completion across progress rows.
type OnboardingProgressReport struct {
	UserID                    uint                    `json:"user_id"`
	FullName                  string                  `json:"full_name"`
	Email                     string                  `json:"email"`
	DepartmentName            string                  `json:"department_name"`
	MentorName                *string                 `json:"mentor_name,omitempty"`
	HireDate                  time.Time               `json:"hire_date"`
	OnboardingStatus          string                  `json:"onboarding_status"`
	OnboardingStartDate       *time.Time              `json:"onboarding_start_date,omitempty"`
	OnboardingCompletionDate  *time.Time              `json:"onboarding_completion_date,omitempty"`
	ProgressPercentage        float64                 `json:"progress_percentage"`
	TotalMandatoryModules     int                     `json:"total_mandatory_modules"`
	CompletedMandatoryModules int                     `json:"completed_mandatory_modules"`
	ModuleStatuses            []ModuleProgressSummary `json:"module_statuses"`
}

// TestResultsEntry is one line of the flattened test-results report.
type TestResultsEntry struct {
	UserID         uint      `json:"user_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	ModuleID       uint      `json:"module_id"`
	ModuleTitle    string    `json:"module_title"`
	AttemptDate    time.Time `json:"attempt_date"`
	AttemptNumber  int       `json:"attempt_number"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	Score          float64   `json:"score"`
	IsPassed       bool      `json:"is_passed"`
}

// UserProgressSummary is one user's line inside a department report.
type UserProgressSummary struct {
	UserID             uint       `json:"user_id"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	OnboardingStatus   string     `json:"onboarding_status"`
	ProgressPercentage float64    `json:"progress_percentage"`
	CompletionDate     *time.Time `json:"completion_date,omitempty"`
}

// DepartmentReport aggregates onboarding state over a department's users.
type DepartmentReport struct {
	DepartmentID              uint                  `json:"department_id"`
	DepartmentName            string                `json:"department_name"`
	TotalUsers                int                   `json:"total_users"`
	UsersInProgress           int                   `json:"users_in_progress"`
	UsersCompleted            int                   `json:"users_completed"`
	UsersNotStarted           int                   `json:"users_not_started"`
	AverageProgressPercentage float64               `json:"average_progress_percentage"`
	Users                     []UserProgressSummary `json:"users"`
}

type ReportService interface {
	OnboardingProgressReport(ctx context.Context, userID uint) (*OnboardingProgressReport, error)
	TestResultsReport(ctx context.Context, userID, moduleID *uint) ([]*TestResultsEntry, error)
	DepartmentReport(ctx context.Context, departmentID uint) (*DepartmentReport, error)
}

type reportService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	deptRepo     repos.DepartmentRepo
	progressRepo repos.ProgressRepo
	attemptRepo  repos.TestAttemptRepo
	progressSvc  ProgressService
}

func NewReportService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	deptRepo repos.DepartmentRepo,
	progressRepo repos.ProgressRepo,
	attemptRepo repos.TestAttemptRepo,
	progressSvc ProgressService,
) ReportService {
	return &reportService{
		db:           db,
		log:          log.With("service", "ReportService"),
		userRepo:     userRepo,
		deptRepo:     deptRepo,
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
		progressSvc:  progressSvc,
	}
}

func (rs *reportService) OnboardingProgressReport(ctx context.Context, userID uint) (*OnboardingProgressReport, error) {
	user, err := rs.userRepo.GetByIDPreloaded(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("user %d", userID)
	}

	rollup, err := rs.progressSvc.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	progressRows, err := rs.progressRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	var firstStart, lastCompletion *time.Time
	for _, row := range progressRows {
		if row.StartDate != nil && (firstStart == nil || row.StartDate.Before(*firstStart)) {
			firstStart = row.StartDate
		}
		if row.CompletionDate != nil && (lastCompletion == nil || row.CompletionDate.After(*lastCompletion)) {
			lastCompletion = row.CompletionDate
		}
	}

	report := &OnboardingProgressReport{
		UserID:                    user.ID,
		FullName:                  user.FullName,
		Email:                     user.Email,
		HireDate:                  user.HireDate,
		OnboardingStatus:          user.OnboardingStatus,
		OnboardingStartDate:       firstStart,
		OnboardingCompletionDate:  lastCompletion,
		ProgressPercentage:        rollup.ProgressPercentage,
		TotalMandatoryModules:     rollup.TotalMandatoryModules,
		CompletedMandatoryModules: rollup.CompletedMandatoryModules,
		ModuleStatuses:            rollup.Modules,
	}
	if user.Department != nil {
		report.DepartmentName = user.Department.Name
	}
	if user.Mentor != nil {
		report.MentorName = &user.Mentor.FullName
	}
	return report, nil
}

func (rs *reportService) TestResultsReport(ctx context.Context, userID, moduleID *uint) ([]*TestResultsEntry, error) {
	attempts, err := rs.attemptRepo.ListFiltered(ctx, nil, userID, moduleID)
	if err != nil {
		return nil, err
	}
	entries := make([]*TestResultsEntry, 0, len(attempts))
	for _, attempt := range attempts {
		entry := &TestResultsEntry{
			UserID:         attempt.UserID,
			ModuleID:       attempt.ModuleID,
			AttemptDate:    attempt.AttemptDate,
			AttemptNumber:  attempt.AttemptNumber,
			TotalQuestions: attempt.TotalQuestions,
			CorrectAnswers: attempt.CorrectAnswers,
			Score:          attempt.Score,
			IsPassed:       attempt.IsPassed,
		}
		if attempt.User != nil {
			entry.FullName = attempt.User.FullName
			entry.Email = attempt.User.Email
		}
		if attempt.Module != nil {
			entry.ModuleTitle = attempt.Module.Title
		}
		if entry.TotalQuestions == 0 {
			// Rows written before question counts were persisted: fall back
			// to the historical approximation.
			entry.TotalQuestions = defaultReportQuestionCount
			entry.CorrectAnswers = int(math.Round(attempt.Score / 100 * defaultReportQuestionCount))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (rs *reportService) DepartmentReport(ctx context.Context, departmentID uint) (*DepartmentReport, error) {
	dept, err := rs.deptRepo.GetByID(ctx, nil, departmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, apperr.NotFoundf("department %d", departmentID)
	}
	users, err := rs.userRepo.ListByDepartment(ctx, nil, departmentID)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserProgressSummary, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(departmentReportConcurrency)
	for i, user := range users {
		g.Go(func() error {
			rollup, err := rs.progressSvc.GetUserProgress(gctx, user.ID)
			if err != nil {
				return err
			}
			summary := UserProgressSummary{
				UserID:             user.ID,
				FullName:           user.FullName,
				Email:              user.Email,
				OnboardingStatus:   user.OnboardingStatus,
				ProgressPercentage: rollup.ProgressPercentage,
			}
			for _, module := range rollup.Modules {
				if module.CompletionDate != nil && (summary.CompletionDate == nil || module.CompletionDate.After(*summary.CompletionDate)) {
					summary.CompletionDate = module.CompletionDate
				}
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &DepartmentReport{
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
		TotalUsers:     len(users),
		Users:          summaries,
	}
	var percentageSum float64
	for i, user := range users {
		switch user.OnboardingStatus {
		case types.StatusInProgress:
			report.UsersInProgress++
		case types.StatusCompleted:
			report.UsersCompleted++
		case types.StatusNotStarted:
			report.UsersNotStarted++
		}
		percentageSum += summaries[i].ProgressPercentage
	}
	if len(users) > 0 {
		report.AverageProgressPercentage = round2(percentageSum / float64(len(users)))
	}
	return report, nil
}
