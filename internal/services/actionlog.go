package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type ActionLogService interface {
	Append(ctx context.Context, tx *gorm.DB, userID uint, actionType string, details any) error
	Record(ctx context.Context, userID uint, actionType string, details any) error
	ListByUser(ctx context.Context, userID uint) ([]*types.ActionLog, error)
	ListFiltered(ctx context.Context, userID *uint, actionType string) ([]*types.ActionLog, error)
}

type actionLogService struct {
	db       *gorm.DB
	log      *logger.Logger
	logRepo  repos.ActionLogRepo
	userRepo repos.UserRepo
}

func NewActionLogService(db *gorm.DB, log *logger.Logger, logRepo repos.ActionLogRepo, userRepo repos.UserRepo) ActionLogService {
	return &actionLogService{
		db:       db,
		log:      log.With("service", "ActionLogService"),
		logRepo:  logRepo,
		userRepo: userRepo,
	}
}

// Append records an audit entry. A nil tx writes outside any transaction;
// callers already inside one pass it through so the entry commits with the
// action it describes.
func (as *actionLogService) Append(ctx context.Context, tx *gorm.DB, userID uint, actionType string, details any) error {
	entry := &types.ActionLog{
		UserID:     userID,
		ActionType: actionType,
		Timestamp:  time.Now().UTC(),
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		entry.Details = datatypes.JSON(raw)
	}
	_, err := as.logRepo.Create(ctx, tx, entry)
	return err
}

// Record is the external entry point: unlike Append it verifies the user
// before writing, since the caller is an API client rather than a service
// that already loaded the user.
func (as *actionLogService) Record(ctx context.Context, userID uint, actionType string, details any) error {
	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFoundf("user %d", userID)
	}
	if actionType == "" {
		return apperr.Validationf("action_type is required")
	}
	return as.Append(ctx, nil, userID, actionType, details)
}

func (as *actionLogService) ListByUser(ctx context.Context, userID uint) ([]*types.ActionLog, error) {
	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("user %d", userID)
	}
	return as.logRepo.ListByUser(ctx, nil, userID)
}

func (as *actionLogService) ListFiltered(ctx context.Context, userID *uint, actionType string) ([]*types.ActionLog, error) {
	return as.logRepo.ListFiltered(ctx, nil, userID, actionType)
}
