package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type ActionLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.ActionLog) (*types.ActionLog, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*types.ActionLog, error)
	ListFiltered(ctx context.Context, tx *gorm.DB, userID *uint, actionType string) ([]*types.ActionLog, error)
}

type actionLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActionLogRepo(db *gorm.DB, baseLog *logger.Logger) ActionLogRepo {
	return &actionLogRepo{db: db, log: baseLog.With("repo", "ActionLogRepo")}
}

func (ar *actionLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.ActionLog) (*types.ActionLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (ar *actionLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*types.ActionLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.ActionLog
	if err := transaction.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *actionLogRepo) ListFiltered(ctx context.Context, tx *gorm.DB, userID *uint, actionType string) ([]*types.ActionLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	query := transaction.WithContext(ctx).Preload("User")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if actionType != "" {
		query = query.Where("action_type = ?", actionType)
	}
	var results []*types.ActionLog
	if err := query.Order("timestamp DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
