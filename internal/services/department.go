package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type CreateDepartmentInput struct {
	Name       string  `json:"name" binding:"required"`
	ExternalID *string `json:"external_id,omitempty"`
}

type UpdateDepartmentInput struct {
	Name       *string `json:"name,omitempty"`
	ExternalID *string `json:"external_id,omitempty"`
}

type DepartmentView struct {
	types.Department
	UserCount int64 `json:"user_count"`
}

type DepartmentService interface {
	Create(ctx context.Context, input CreateDepartmentInput) (*types.Department, error)
	GetByID(ctx context.Context, departmentID uint) (*DepartmentView, error)
	List(ctx context.Context) ([]*DepartmentView, error)
	Update(ctx context.Context, departmentID uint, input UpdateDepartmentInput) (*types.Department, error)
	Delete(ctx context.Context, departmentID uint) error
}

type departmentService struct {
	db       *gorm.DB
	log      *logger.Logger
	deptRepo repos.DepartmentRepo
}

func NewDepartmentService(db *gorm.DB, log *logger.Logger, deptRepo repos.DepartmentRepo) DepartmentService {
	return &departmentService{
		db:       db,
		log:      log.With("service", "DepartmentService"),
		deptRepo: deptRepo,
	}
}

func (ds *departmentService) Create(ctx context.Context, input CreateDepartmentInput) (*types.Department, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validationf("department name is required")
	}
	existing, err := ds.deptRepo.GetByName(ctx, nil, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validationf("department %q already exists", name)
	}
	dept := &types.Department{Name: name, ExternalID: input.ExternalID}
	if _, err := ds.deptRepo.Create(ctx, nil, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (ds *departmentService) GetByID(ctx context.Context, departmentID uint) (*DepartmentView, error) {
	dept, err := ds.deptRepo.GetByID(ctx, nil, departmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, apperr.NotFoundf("department %d", departmentID)
	}
	count, err := ds.deptRepo.CountUsers(ctx, nil, departmentID)
	if err != nil {
		return nil, err
	}
	return &DepartmentView{Department: *dept, UserCount: count}, nil
}

func (ds *departmentService) List(ctx context.Context) ([]*DepartmentView, error) {
	depts, err := ds.deptRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	views := make([]*DepartmentView, 0, len(depts))
	for _, dept := range depts {
		count, err := ds.deptRepo.CountUsers(ctx, nil, dept.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, &DepartmentView{Department: *dept, UserCount: count})
	}
	return views, nil
}

func (ds *departmentService) Update(ctx context.Context, departmentID uint, input UpdateDepartmentInput) (*types.Department, error) {
	dept, err := ds.deptRepo.GetByID(ctx, nil, departmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, apperr.NotFoundf("department %d", departmentID)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperr.Validationf("department name is required")
		}
		if name != dept.Name {
			existing, err := ds.deptRepo.GetByName(ctx, nil, name)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, apperr.Validationf("department %q already exists", name)
			}
			dept.Name = name
		}
	}
	if input.ExternalID != nil {
		dept.ExternalID = input.ExternalID
	}
	if err := ds.deptRepo.Update(ctx, nil, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (ds *departmentService) Delete(ctx context.Context, departmentID uint) error {
	dept, err := ds.deptRepo.GetByID(ctx, nil, departmentID)
	if err != nil {
		return err
	}
	if dept == nil {
		return apperr.NotFoundf("department %d", departmentID)
	}
	count, err := ds.deptRepo.CountUsers(ctx, nil, departmentID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Validationf("department %d still has %d users", departmentID, count)
	}
	return ds.deptRepo.Delete(ctx, nil, departmentID)
}
