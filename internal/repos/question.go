package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, question *types.Question) (*types.Question, error)
	GetByID(ctx context.Context, tx *gorm.DB, questionID uint) (*types.Question, error)
	ListByModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]*types.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *types.Question) error
	ReplaceOptions(ctx context.Context, tx *gorm.DB, question *types.Question, options []*types.AnswerOption) error
	Delete(ctx context.Context, tx *gorm.DB, questionID uint) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (qr *questionRepo) Create(ctx context.Context, tx *gorm.DB, question *types.Question) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	if err := transaction.WithContext(ctx).Create(question).Error; err != nil {
		return nil, err
	}
	return question, nil
}

func (qr *questionRepo) GetByID(ctx context.Context, tx *gorm.DB, questionID uint) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	var result types.Question
	if err := transaction.WithContext(ctx).
		Preload("AnswerOptions").
		First(&result, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (qr *questionRepo) ListByModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	var results []*types.Question
	if err := transaction.WithContext(ctx).
		Preload("AnswerOptions").
		Where("module_id = ?", moduleID).
		Order("id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (qr *questionRepo) Update(ctx context.Context, tx *gorm.DB, question *types.Question) error {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	return transaction.WithContext(ctx).Save(question).Error
}

// ReplaceOptions swaps a question's full option set in one shot. The old
// rows are removed first so stale correctness flags can never linger.
func (qr *questionRepo) ReplaceOptions(ctx context.Context, tx *gorm.DB, question *types.Question, options []*types.AnswerOption) error {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	if err := transaction.WithContext(ctx).
		Where("question_id = ?", question.ID).
		Delete(&types.AnswerOption{}).Error; err != nil {
		return err
	}
	for _, opt := range options {
		opt.ID = 0
		opt.QuestionID = question.ID
	}
	if len(options) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&options).Error
}

func (qr *questionRepo) Delete(ctx context.Context, tx *gorm.DB, questionID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}
	if err := transaction.WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&types.AnswerOption{}).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).Delete(&types.Question{}, questionID).Error
}
