package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type ModuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error)
	GetByID(ctx context.Context, tx *gorm.DB, moduleID uint) (*types.Module, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, moduleID uint) (*types.Module, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Module, error)
	// ListApplicable returns modules visible to a member of the given
	// department: department-less modules plus the department's own.
	ListApplicable(ctx context.Context, tx *gorm.DB, departmentID uint) ([]*types.Module, error)
	Update(ctx context.Context, tx *gorm.DB, module *types.Module) error
	Delete(ctx context.Context, tx *gorm.DB, moduleID uint) error
	CountQuestions(ctx context.Context, tx *gorm.DB, moduleID uint) (int64, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (mr *moduleRepo) Create(ctx context.Context, tx *gorm.DB, module *types.Module) (*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).Create(module).Error; err != nil {
		return nil, err
	}
	return module, nil
}

func (mr *moduleRepo) GetByID(ctx context.Context, tx *gorm.DB, moduleID uint) (*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.Module
	if err := transaction.WithContext(ctx).First(&result, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (mr *moduleRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, moduleID uint) (*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.Module
	if err := transaction.WithContext(ctx).
		Preload("Questions.AnswerOptions").
		First(&result, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (mr *moduleRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Module
	if err := transaction.WithContext(ctx).
		Preload("Department").
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moduleRepo) ListApplicable(ctx context.Context, tx *gorm.DB, departmentID uint) ([]*types.Module, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Module
	if err := transaction.WithContext(ctx).
		Where("department_id IS NULL OR department_id = ?", departmentID).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moduleRepo) Update(ctx context.Context, tx *gorm.DB, module *types.Module) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).Save(module).Error
}

func (mr *moduleRepo) Delete(ctx context.Context, tx *gorm.DB, moduleID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).Delete(&types.Module{}, moduleID).Error
}

func (mr *moduleRepo) CountQuestions(ctx context.Context, tx *gorm.DB, moduleID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Question{}).
		Where("module_id = ?", moduleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
