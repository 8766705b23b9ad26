package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type CreateModuleInput struct {
	Title        string  `json:"title" binding:"required"`
	Description  *string `json:"description,omitempty"`
	Content      *string `json:"content,omitempty"`
	IsMandatory  bool    `json:"is_mandatory"`
	DepartmentID *uint   `json:"department_id,omitempty"`
	PassingScore int     `json:"passing_score"`
	MaxAttempts  int     `json:"max_attempts"`
}

type UpdateModuleInput struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Content      *string `json:"content,omitempty"`
	IsMandatory  *bool   `json:"is_mandatory,omitempty"`
	DepartmentID *uint   `json:"department_id,omitempty"`
	PassingScore *int    `json:"passing_score,omitempty"`
	MaxAttempts  *int    `json:"max_attempts,omitempty"`
}

// ModuleView is a module plus its question count.
type ModuleView struct {
	types.Module
	QuestionCount int `json:"question_count"`
}

type ModuleService interface {
	Create(ctx context.Context, input CreateModuleInput) (*types.Module, error)
	GetByID(ctx context.Context, moduleID uint) (*ModuleView, error)
	List(ctx context.Context) ([]*ModuleView, error)
	Update(ctx context.Context, moduleID uint, input UpdateModuleInput) (*types.Module, error)
	Delete(ctx context.Context, moduleID uint) error
}

type moduleService struct {
	db         *gorm.DB
	log        *logger.Logger
	moduleRepo repos.ModuleRepo
	deptRepo   repos.DepartmentRepo
}

func NewModuleService(db *gorm.DB, log *logger.Logger, moduleRepo repos.ModuleRepo, deptRepo repos.DepartmentRepo) ModuleService {
	return &moduleService{
		db:         db,
		log:        log.With("service", "ModuleService"),
		moduleRepo: moduleRepo,
		deptRepo:   deptRepo,
	}
}

func validateModuleThresholds(passingScore, maxAttempts int) error {
	if passingScore < 0 || passingScore > 100 {
		return apperr.Validationf("passing score must be between 0 and 100, got %d", passingScore)
	}
	if maxAttempts < 1 {
		return apperr.Validationf("max attempts must be positive, got %d", maxAttempts)
	}
	return nil
}

func (ms *moduleService) Create(ctx context.Context, input CreateModuleInput) (*types.Module, error) {
	if err := validateModuleThresholds(input.PassingScore, input.MaxAttempts); err != nil {
		return nil, err
	}
	if input.DepartmentID != nil {
		dept, err := ms.deptRepo.GetByID(ctx, nil, *input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if dept == nil {
			return nil, apperr.NotFoundf("department %d", *input.DepartmentID)
		}
	}
	module := &types.Module{
		Title:        input.Title,
		Description:  input.Description,
		Content:      input.Content,
		IsMandatory:  input.IsMandatory,
		DepartmentID: input.DepartmentID,
		PassingScore: input.PassingScore,
		MaxAttempts:  input.MaxAttempts,
	}
	return ms.moduleRepo.Create(ctx, nil, module)
}

func (ms *moduleService) GetByID(ctx context.Context, moduleID uint) (*ModuleView, error) {
	module, err := ms.moduleRepo.GetByID(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, apperr.NotFoundf("module %d", moduleID)
	}
	count, err := ms.moduleRepo.CountQuestions(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	return &ModuleView{Module: *module, QuestionCount: int(count)}, nil
}

func (ms *moduleService) List(ctx context.Context) ([]*ModuleView, error) {
	modules, err := ms.moduleRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	views := make([]*ModuleView, 0, len(modules))
	for _, module := range modules {
		count, err := ms.moduleRepo.CountQuestions(ctx, nil, module.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, &ModuleView{Module: *module, QuestionCount: int(count)})
	}
	return views, nil
}

func (ms *moduleService) Update(ctx context.Context, moduleID uint, input UpdateModuleInput) (*types.Module, error) {
	module, err := ms.moduleRepo.GetByID(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, apperr.NotFoundf("module %d", moduleID)
	}
	if input.Title != nil {
		module.Title = *input.Title
	}
	if input.Description != nil {
		module.Description = input.Description
	}
	if input.Content != nil {
		module.Content = input.Content
	}
	if input.IsMandatory != nil {
		module.IsMandatory = *input.IsMandatory
	}
	if input.DepartmentID != nil {
		dept, err := ms.deptRepo.GetByID(ctx, nil, *input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if dept == nil {
			return nil, apperr.NotFoundf("department %d", *input.DepartmentID)
		}
		module.DepartmentID = input.DepartmentID
	}
	if input.PassingScore != nil {
		module.PassingScore = *input.PassingScore
	}
	if input.MaxAttempts != nil {
		module.MaxAttempts = *input.MaxAttempts
	}
	if err := validateModuleThresholds(module.PassingScore, module.MaxAttempts); err != nil {
		return nil, err
	}
	if err := ms.moduleRepo.Update(ctx, nil, module); err != nil {
		return nil, err
	}
	return module, nil
}

func (ms *moduleService) Delete(ctx context.Context, moduleID uint) error {
	module, err := ms.moduleRepo.GetByID(ctx, nil, moduleID)
	if err != nil {
		return err
	}
	if module == nil {
		return apperr.NotFoundf("module %d", moduleID)
	}
	return ms.moduleRepo.Delete(ctx, nil, moduleID)
}
