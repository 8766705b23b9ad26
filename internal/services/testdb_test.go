package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	// Every pool connection to sqlite ":memory:" gets its own empty
	// database; pin the pool to one connection so concurrent queries
	// (e.g. the errgroup in ReportService) see the migrated schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&types.Department{},
		&types.Role{},
		&types.User{},
		&types.Module{},
		&types.Question{},
		&types.AnswerOption{},
		&types.TestAttempt{},
		&types.UserModuleProgress{},
		&types.ActionLog{},
	))
	return db
}

// testEnv bundles the repos and services most tests need against one db.
type testEnv struct {
	db           *gorm.DB
	userRepo     repos.UserRepo
	deptRepo     repos.DepartmentRepo
	moduleRepo   repos.ModuleRepo
	questionRepo repos.QuestionRepo
	attemptRepo  repos.TestAttemptRepo
	progressRepo repos.ProgressRepo
	logRepo      repos.ActionLogRepo
	testing      TestingService
	progress     ProgressService
	reports      ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := logger.NewNop()
	env := &testEnv{
		db:           db,
		userRepo:     repos.NewUserRepo(db, log),
		deptRepo:     repos.NewDepartmentRepo(db, log),
		moduleRepo:   repos.NewModuleRepo(db, log),
		questionRepo: repos.NewQuestionRepo(db, log),
		attemptRepo:  repos.NewTestAttemptRepo(db, log),
		progressRepo: repos.NewProgressRepo(db, log),
		logRepo:      repos.NewActionLogRepo(db, log),
	}
	env.testing = NewTestingService(db, log, env.moduleRepo, env.userRepo, env.attemptRepo, env.progressRepo, env.logRepo)
	env.progress = NewProgressService(db, log, env.userRepo, env.moduleRepo, env.progressRepo, env.attemptRepo, env.logRepo)
	env.reports = NewReportService(db, log, env.userRepo, env.deptRepo, env.progressRepo, env.attemptRepo, env.progress)
	return env
}

func (env *testEnv) createDepartment(t *testing.T, name string) *types.Department {
	t.Helper()
	dept := &types.Department{Name: name}
	require.NoError(t, env.db.Create(dept).Error)
	return dept
}

func (env *testEnv) createUser(t *testing.T, name, email string, deptID uint) *types.User {
	t.Helper()
	user := &types.User{
		FullName:         name,
		Email:            email,
		DepartmentID:     deptID,
		OnboardingStatus: types.StatusNotStarted,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

// createModule builds a module with questionCount questions of three options
// each. Returns the module and the correct option id per question.
func (env *testEnv) createModule(t *testing.T, title string, mandatory bool, passingScore, maxAttempts, questionCount int) (*types.Module, map[uint]uint) {
	t.Helper()
	module := &types.Module{
		Title:        title,
		IsMandatory:  mandatory,
		PassingScore: passingScore,
		MaxAttempts:  maxAttempts,
	}
	require.NoError(t, env.db.Create(module).Error)

	correct := make(map[uint]uint, questionCount)
	for i := 0; i < questionCount; i++ {
		question := &types.Question{
			ModuleID:     module.ID,
			QuestionText: "question",
			AnswerOptions: []*types.AnswerOption{
				{AnswerText: "right", IsCorrect: true},
				{AnswerText: "wrong"},
				{AnswerText: "also wrong"},
			},
		}
		require.NoError(t, env.db.Create(question).Error)
		correct[question.ID] = question.AnswerOptions[0].ID
	}
	return module, correct
}

// answersFor builds a submission answering n questions correctly and the
// rest with a deliberately wrong id.
func answersFor(correct map[uint]uint, rightCount int) []SubmittedAnswer {
	answers := make([]SubmittedAnswer, 0, len(correct))
	for questionID, answerID := range correct {
		if rightCount > 0 {
			answers = append(answers, SubmittedAnswer{QuestionID: questionID, AnswerID: answerID})
			rightCount--
			continue
		}
		answers = append(answers, SubmittedAnswer{QuestionID: questionID, AnswerID: answerID + 100000})
	}
	return answers
}
