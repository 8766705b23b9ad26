package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

// AttemptStats is the grouped rollup of a user's attempts on one module.
type AttemptStats struct {
	ModuleID      uint
	AttemptsCount int
	BestScore     *float64
	PassedCount   int
}

func (s AttemptStats) IsPassed() bool { return s.PassedCount > 0 }

type TestAttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.TestAttempt) (*types.TestAttempt, error)
	GetByID(ctx context.Context, tx *gorm.DB, attemptID int64) (*types.TestAttempt, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*types.TestAttempt, error)
	ListByUserModule(ctx context.Context, tx *gorm.DB, userID, moduleID uint) ([]*types.TestAttempt, error)
	ListFiltered(ctx context.Context, tx *gorm.DB, userID, moduleID *uint) ([]*types.TestAttempt, error)
	CountByUserModule(ctx context.Context, tx *gorm.DB, userID, moduleID uint) (int64, error)
	StatsByUser(ctx context.Context, tx *gorm.DB, userID uint) (map[uint]AttemptStats, error)
}

type testAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestAttemptRepo(db *gorm.DB, baseLog *logger.Logger) TestAttemptRepo {
	return &testAttemptRepo{db: db, log: baseLog.With("repo", "TestAttemptRepo")}
}

func (tr *testAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.TestAttempt) (*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if err := transaction.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (tr *testAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, attemptID int64) (*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var result types.TestAttempt
	if err := transaction.WithContext(ctx).
		Preload("User").
		Preload("Module").
		First(&result, attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (tr *testAttemptRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var results []*types.TestAttempt
	if err := transaction.WithContext(ctx).
		Preload("User").
		Preload("Module").
		Where("user_id = ?", userID).
		Order("attempt_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *testAttemptRepo) ListByUserModule(ctx context.Context, tx *gorm.DB, userID, moduleID uint) ([]*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var results []*types.TestAttempt
	if err := transaction.WithContext(ctx).
		Preload("User").
		Preload("Module").
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("attempt_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *testAttemptRepo) ListFiltered(ctx context.Context, tx *gorm.DB, userID, moduleID *uint) ([]*types.TestAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	query := transaction.WithContext(ctx).
		Preload("User").
		Preload("Module")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if moduleID != nil {
		query = query.Where("module_id = ?", *moduleID)
	}
	var results []*types.TestAttempt
	if err := query.Order("attempt_date DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *testAttemptRepo) CountByUserModule(ctx context.Context, tx *gorm.DB, userID, moduleID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.TestAttempt{}).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (tr *testAttemptRepo) StatsByUser(ctx context.Context, tx *gorm.DB, userID uint) (map[uint]AttemptStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	// CASE WHEN keeps the pass aggregation portable between Postgres and the
	// SQLite test databases.
	var rows []AttemptStats
	if err := transaction.WithContext(ctx).
		Model(&types.TestAttempt{}).
		Select("module_id, COUNT(*) AS attempts_count, MAX(score) AS best_score, SUM(CASE WHEN is_passed THEN 1 ELSE 0 END) AS passed_count").
		Where("user_id = ?", userID).
		Group("module_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats := make(map[uint]AttemptStats, len(rows))
	for _, row := range rows {
		stats[row.ModuleID] = row
	}
	return stats, nil
}
