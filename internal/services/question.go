package services

import (
	"context"
	"fmt"
	"math/rand"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

// minTestQuestions is the smallest question pool a module needs before a
// test can be generated from it.
const minTestQuestions = 10

// ShuffleFunc reorders n elements in place via swap. Production uses
// rand.Shuffle; tests inject a deterministic ordering. Shuffling only
// affects presentation order, never grading.
type ShuffleFunc func(n int, swap func(i, j int))

type AnswerOptionInput struct {
	AnswerText string `json:"answer_text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
}

type CreateQuestionInput struct {
	ModuleID      uint                `json:"module_id" binding:"required"`
	QuestionText  string              `json:"question_text" binding:"required"`
	AnswerOptions []AnswerOptionInput `json:"answer_options" binding:"required"`
}

type UpdateQuestionInput struct {
	QuestionText  *string             `json:"question_text,omitempty"`
	AnswerOptions []AnswerOptionInput `json:"answer_options,omitempty"`
}

// TestAnswerOption is an option as shown to a test taker: no correctness.
type TestAnswerOption struct {
	AnswerID   uint   `json:"answer_id"`
	AnswerText string `json:"answer_text"`
}

// TestQuestion is a question as shown to a test taker.
type TestQuestion struct {
	QuestionID    uint               `json:"question_id"`
	QuestionText  string             `json:"question_text"`
	AnswerOptions []TestAnswerOption `json:"answer_options"`
}

type QuestionService interface {
	Create(ctx context.Context, input CreateQuestionInput) (*types.Question, error)
	GetByID(ctx context.Context, questionID uint) (*types.Question, error)
	ListByModule(ctx context.Context, moduleID uint) ([]*types.Question, error)
	Update(ctx context.Context, questionID uint, input UpdateQuestionInput) (*types.Question, error)
	Delete(ctx context.Context, questionID uint) error
	GenerateTest(ctx context.Context, moduleID uint) ([]*TestQuestion, error)
}

type questionService struct {
	db           *gorm.DB
	log          *logger.Logger
	moduleRepo   repos.ModuleRepo
	questionRepo repos.QuestionRepo
	shuffle      ShuffleFunc
}

func NewQuestionService(db *gorm.DB, log *logger.Logger, moduleRepo repos.ModuleRepo, questionRepo repos.QuestionRepo) QuestionService {
	return NewQuestionServiceWithShuffle(db, log, moduleRepo, questionRepo, rand.Shuffle)
}

func NewQuestionServiceWithShuffle(db *gorm.DB, log *logger.Logger, moduleRepo repos.ModuleRepo, questionRepo repos.QuestionRepo, shuffle ShuffleFunc) QuestionService {
	return &questionService{
		db:           db,
		log:          log.With("service", "QuestionService"),
		moduleRepo:   moduleRepo,
		questionRepo: questionRepo,
		shuffle:      shuffle,
	}
}

func validateOptions(options []AnswerOptionInput) error {
	if len(options) < 2 {
		return apperr.Validationf("a question needs a minimum of 2 options")
	}
	correct := 0
	for _, opt := range options {
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return apperr.Validationf("a question needs exactly one correct answer")
	}
	return nil
}

func (qs *questionService) Create(ctx context.Context, input CreateQuestionInput) (*types.Question, error) {
	module, err := qs.moduleRepo.GetByID(ctx, nil, input.ModuleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, apperr.NotFoundf("module %d", input.ModuleID)
	}
	if err := validateOptions(input.AnswerOptions); err != nil {
		return nil, err
	}

	question := &types.Question{
		ModuleID:     input.ModuleID,
		QuestionText: input.QuestionText,
	}
	for _, opt := range input.AnswerOptions {
		question.AnswerOptions = append(question.AnswerOptions, &types.AnswerOption{
			AnswerText: opt.AnswerText,
			IsCorrect:  opt.IsCorrect,
		})
	}
	if _, err := qs.questionRepo.Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("creating question: %w", err)
	}
	return question, nil
}

func (qs *questionService) GetByID(ctx context.Context, questionID uint) (*types.Question, error) {
	question, err := qs.questionRepo.GetByID(ctx, nil, questionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFoundf("question %d", questionID)
	}
	return question, nil
}

func (qs *questionService) ListByModule(ctx context.Context, moduleID uint) ([]*types.Question, error) {
	return qs.questionRepo.ListByModule(ctx, nil, moduleID)
}

func (qs *questionService) Update(ctx context.Context, questionID uint, input UpdateQuestionInput) (*types.Question, error) {
	var updated *types.Question
	err := qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question, err := qs.questionRepo.GetByID(ctx, tx, questionID)
		if err != nil {
			return err
		}
		if question == nil {
			return apperr.NotFoundf("question %d", questionID)
		}
		if input.QuestionText != nil {
			question.QuestionText = *input.QuestionText
		}
		if input.AnswerOptions != nil {
			if err := validateOptions(input.AnswerOptions); err != nil {
				return err
			}
			options := make([]*types.AnswerOption, 0, len(input.AnswerOptions))
			for _, opt := range input.AnswerOptions {
				options = append(options, &types.AnswerOption{
					AnswerText: opt.AnswerText,
					IsCorrect:  opt.IsCorrect,
				})
			}
			if err := qs.questionRepo.ReplaceOptions(ctx, tx, question, options); err != nil {
				return fmt.Errorf("replacing options: %w", err)
			}
			question.AnswerOptions = options
		}
		stripped := *question
		stripped.AnswerOptions = nil
		if err := qs.questionRepo.Update(ctx, tx, &stripped); err != nil {
			return err
		}
		updated = question
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (qs *questionService) Delete(ctx context.Context, questionID uint) error {
	question, err := qs.questionRepo.GetByID(ctx, nil, questionID)
	if err != nil {
		return err
	}
	if question == nil {
		return apperr.NotFoundf("question %d", questionID)
	}
	return qs.questionRepo.Delete(ctx, nil, questionID)
}

// GenerateTest returns the module's questions for taking: correctness flags
// stripped, questions and options shuffled.
func (qs *questionService) GenerateTest(ctx context.Context, moduleID uint) ([]*TestQuestion, error) {
	module, err := qs.moduleRepo.GetByIDWithQuestions(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, apperr.NotFoundf("module %d", moduleID)
	}
	if len(module.Questions) < minTestQuestions {
		return nil, apperr.Validationf("module needs at least %d questions to generate a test, has %d", minTestQuestions, len(module.Questions))
	}

	questions := make([]*TestQuestion, 0, len(module.Questions))
	for _, q := range module.Questions {
		testQuestion := &TestQuestion{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
		}
		for _, opt := range q.AnswerOptions {
			testQuestion.AnswerOptions = append(testQuestion.AnswerOptions, TestAnswerOption{
				AnswerID:   opt.ID,
				AnswerText: opt.AnswerText,
			})
		}
		qs.shuffle(len(testQuestion.AnswerOptions), func(i, j int) {
			testQuestion.AnswerOptions[i], testQuestion.AnswerOptions[j] = testQuestion.AnswerOptions[j], testQuestion.AnswerOptions[i]
		})
		questions = append(questions, testQuestion)
	}
	qs.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions, nil
}
