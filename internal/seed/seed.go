package seed

import (
	"context"
	_ "embed"
	"errors"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type fixtureOption struct {
	Text      string `yaml:"text"`
	IsCorrect bool   `yaml:"is_correct"`
}

type fixtureQuestion struct {
	Text    string          `yaml:"text"`
	Options []fixtureOption `yaml:"options"`
}

type fixtureModule struct {
	Title        string            `yaml:"title"`
	Description  string            `yaml:"description"`
	Content      string            `yaml:"content"`
	IsMandatory  bool              `yaml:"is_mandatory"`
	Department   string            `yaml:"department"`
	PassingScore int               `yaml:"passing_score"`
	MaxAttempts  int               `yaml:"max_attempts"`
	Questions    []fixtureQuestion `yaml:"questions"`
}

type fixtures struct {
	Roles       []string        `yaml:"roles"`
	Departments []string        `yaml:"departments"`
	Modules     []fixtureModule `yaml:"modules"`
}

type Seeder struct {
	db           *gorm.DB
	log          *logger.Logger
	roleRepo     repos.RoleRepo
	deptRepo     repos.DepartmentRepo
	moduleRepo   repos.ModuleRepo
	questionRepo repos.QuestionRepo
}

func NewSeeder(db *gorm.DB, log *logger.Logger, roleRepo repos.RoleRepo, deptRepo repos.DepartmentRepo, moduleRepo repos.ModuleRepo, questionRepo repos.QuestionRepo) *Seeder {
	return &Seeder{
		db:           db,
		log:          log.With("component", "Seeder"),
		roleRepo:     roleRepo,
		deptRepo:     deptRepo,
		moduleRepo:   moduleRepo,
		questionRepo: questionRepo,
	}
}

// Run loads the embedded fixtures. Seeding is idempotent: rows matched by
// name or title are left alone, so it is safe on every start.
func (s *Seeder) Run(ctx context.Context) error {
	return s.RunWith(ctx, defaultFixtures)
}

func (s *Seeder) RunWith(ctx context.Context, raw []byte) error {
	var fx fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range fx.Roles {
			if err := s.ensureRole(ctx, tx, name); err != nil {
				return err
			}
		}
		deptIDs := map[string]uint{}
		for _, name := range fx.Departments {
			dept, err := s.ensureDepartment(ctx, tx, name)
			if err != nil {
				return err
			}
			deptIDs[name] = dept.ID
		}
		for _, fm := range fx.Modules {
			if err := s.ensureModule(ctx, tx, fm, deptIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Seeder) ensureRole(ctx context.Context, tx *gorm.DB, name string) error {
	role, err := s.roleRepo.GetByName(ctx, tx, name)
	if err != nil {
		return err
	}
	if role != nil {
		return nil
	}
	_, err = s.roleRepo.Create(ctx, tx, &types.Role{RoleName: name})
	return err
}

func (s *Seeder) ensureDepartment(ctx context.Context, tx *gorm.DB, name string) (*types.Department, error) {
	dept, err := s.deptRepo.GetByName(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if dept != nil {
		return dept, nil
	}
	return s.deptRepo.Create(ctx, tx, &types.Department{Name: name})
}

func (s *Seeder) ensureModule(ctx context.Context, tx *gorm.DB, fm fixtureModule, deptIDs map[string]uint) error {
	var existing types.Module
	err := tx.WithContext(ctx).Where("title = ?", fm.Title).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	module := &types.Module{
		Title:        fm.Title,
		IsMandatory:  fm.IsMandatory,
		PassingScore: fm.PassingScore,
		MaxAttempts:  fm.MaxAttempts,
	}
	if fm.Description != "" {
		module.Description = &fm.Description
	}
	if fm.Content != "" {
		module.Content = &fm.Content
	}
	if fm.Department != "" {
		if id, ok := deptIDs[fm.Department]; ok {
			module.DepartmentID = &id
		}
	}
	if _, err := s.moduleRepo.Create(ctx, tx, module); err != nil {
		return err
	}
	for _, fq := range fm.Questions {
		question := &types.Question{
			ModuleID:     module.ID,
			QuestionText: fq.Text,
		}
		for _, fo := range fq.Options {
			question.AnswerOptions = append(question.AnswerOptions, &types.AnswerOption{
				AnswerText: fo.Text,
				IsCorrect:  fo.IsCorrect,
			})
		}
		if _, err := s.questionRepo.Create(ctx, tx, question); err != nil {
			return err
		}
	}
	s.log.Info("seeded module", "title", fm.Title, "questions", len(fm.Questions))
	return nil
}
