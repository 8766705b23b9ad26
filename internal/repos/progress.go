package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type ProgressRepo interface {
	GetByUserModule(ctx context.Context, tx *gorm.DB, userID, moduleID uint) (*types.UserModuleProgress, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*types.UserModuleProgress, error)
	ListByUsers(ctx context.Context, tx *gorm.DB, userIDs []uint) ([]*types.UserModuleProgress, error)
	ListFiltered(ctx context.Context, tx *gorm.DB, userID, moduleID *uint) ([]*types.UserModuleProgress, error)
	// EnsureRow creates the (user, module) row if absent and returns the
	// surviving row. Two racing creates converge on one row: the loser's
	// insert is a no-op and the winner's row is re-read.
	EnsureRow(ctx context.Context, tx *gorm.DB, row *types.UserModuleProgress) (*types.UserModuleProgress, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.UserModuleProgress) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (pr *progressRepo) GetByUserModule(ctx context.Context, tx *gorm.DB, userID, moduleID uint) (*types.UserModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.UserModuleProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (pr *progressRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*types.UserModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.UserModuleProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *progressRepo) ListByUsers(ctx context.Context, tx *gorm.DB, userIDs []uint) ([]*types.UserModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.UserModuleProgress
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *progressRepo) ListFiltered(ctx context.Context, tx *gorm.DB, userID, moduleID *uint) ([]*types.UserModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
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
	var results []*types.UserModuleProgress
	if err := query.Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *progressRepo) EnsureRow(ctx context.Context, tx *gorm.DB, row *types.UserModuleProgress) (*types.UserModuleProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return pr.GetByUserModule(ctx, transaction, row.UserID, row.ModuleID)
}

func (pr *progressRepo) Update(ctx context.Context, tx *gorm.DB, row *types.UserModuleProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Save(row).Error
}
