package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type DepartmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, dept *types.Department) (*types.Department, error)
	GetByID(ctx context.Context, tx *gorm.DB, deptID uint) (*types.Department, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Department, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*types.Department, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Department, error)
	Update(ctx context.Context, tx *gorm.DB, dept *types.Department) error
	Delete(ctx context.Context, tx *gorm.DB, deptID uint) error
	CountUsers(ctx context.Context, tx *gorm.DB, deptID uint) (int64, error)
}

type departmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDepartmentRepo(db *gorm.DB, baseLog *logger.Logger) DepartmentRepo {
	return &departmentRepo{db: db, log: baseLog.With("repo", "DepartmentRepo")}
}

func (dr *departmentRepo) Create(ctx context.Context, tx *gorm.DB, dept *types.Department) (*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	if err := transaction.WithContext(ctx).Create(dept).Error; err != nil {
		return nil, err
	}
	return dept, nil
}

func (dr *departmentRepo) GetByID(ctx context.Context, tx *gorm.DB, deptID uint) (*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var result types.Department
	if err := transaction.WithContext(ctx).First(&result, deptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (dr *departmentRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var result types.Department
	if err := transaction.WithContext(ctx).
		Where("name = ?", name).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (dr *departmentRepo) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var result types.Department
	if err := transaction.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (dr *departmentRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Department, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var results []*types.Department
	if err := transaction.WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *departmentRepo) Update(ctx context.Context, tx *gorm.DB, dept *types.Department) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	return transaction.WithContext(ctx).Save(dept).Error
}

func (dr *departmentRepo) Delete(ctx context.Context, tx *gorm.DB, deptID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	return transaction.WithContext(ctx).Delete(&types.Department{}, deptID).Error
}

func (dr *departmentRepo) CountUsers(ctx context.Context, tx *gorm.DB, deptID uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("department_id = ?", deptID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
