package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

type CreateUserInput struct {
	FullName     string     `json:"full_name" binding:"required"`
	Email        string     `json:"email" binding:"required,email"`
	DepartmentID uint       `json:"department_id" binding:"required"`
	MentorID     *uint      `json:"mentor_id,omitempty"`
	HireDate     *time.Time `json:"hire_date,omitempty"`
	JobTitle     *string    `json:"job_title,omitempty"`
	Roles        []string   `json:"roles,omitempty"`
}

type UpdateUserInput struct {
	FullName     *string    `json:"full_name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	DepartmentID *uint      `json:"department_id,omitempty"`
	MentorID     *uint      `json:"mentor_id,omitempty"`
	HireDate     *time.Time `json:"hire_date,omitempty"`
	Status       *string    `json:"onboarding_status,omitempty"`
	JobTitle     *string    `json:"job_title,omitempty"`
	Roles        []string   `json:"roles,omitempty"`
}

// UserView is the read model with department/mentor names resolved.
type UserView struct {
	UserID           uint       `json:"user_id"`
	ExternalID       *string    `json:"external_id,omitempty"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	DepartmentID     uint       `json:"department_id"`
	DepartmentName   string     `json:"department_name"`
	MentorID         *uint      `json:"mentor_id,omitempty"`
	MentorName       *string    `json:"mentor_name,omitempty"`
	HireDate         time.Time  `json:"hire_date"`
	OnboardingStatus string     `json:"onboarding_status"`
	JobTitle         *string    `json:"job_title,omitempty"`
	RimsLastSyncAt   *time.Time `json:"rims_last_sync_at,omitempty"`
	Roles            []string   `json:"roles"`
}

var validStatuses = map[string]struct{}{
	types.StatusNotStarted: {},
	types.StatusInProgress: {},
	types.StatusCompleted:  {},
	types.StatusFailed:     {},
}

type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*UserView, error)
	GetByID(ctx context.Context, userID uint) (*UserView, error)
	List(ctx context.Context) ([]*UserView, error)
	Update(ctx context.Context, userID uint, input UpdateUserInput) (*UserView, error)
	Delete(ctx context.Context, userID uint) error
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	deptRepo repos.DepartmentRepo
	roleRepo repos.RoleRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, deptRepo repos.DepartmentRepo, roleRepo repos.RoleRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		deptRepo: deptRepo,
		roleRepo: roleRepo,
	}
}

func UserToView(user *types.User) *UserView {
	view := &UserView{
		UserID:           user.ID,
		ExternalID:       user.ExternalID,
		FullName:         user.FullName,
		Email:            user.Email,
		DepartmentID:     user.DepartmentID,
		MentorID:         user.MentorID,
		HireDate:         user.HireDate,
		OnboardingStatus: user.OnboardingStatus,
		JobTitle:         user.JobTitle,
		RimsLastSyncAt:   user.RimsLastSyncAt,
		Roles:            []string{},
	}
	if user.Department != nil {
		view.DepartmentName = user.Department.Name
	}
	if user.Mentor != nil {
		view.MentorName = &user.Mentor.FullName
	}
	for _, role := range user.Roles {
		view.Roles = append(view.Roles, role.RoleName)
	}
	return view
}

func (us *userService) Create(ctx context.Context, input CreateUserInput) (*UserView, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperr.Validationf("email is required")
	}
	exists, err := us.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Validationf("email %q is already in use", email)
	}
	dept, err := us.deptRepo.GetByID(ctx, nil, input.DepartmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, apperr.NotFoundf("department %d", input.DepartmentID)
	}
	if input.MentorID != nil {
		mentor, err := us.userRepo.GetByID(ctx, nil, *input.MentorID)
		if err != nil {
			return nil, err
		}
		if mentor == nil {
			return nil, apperr.NotFoundf("mentor %d", *input.MentorID)
		}
	}

	hireDate := time.Now().UTC()
	if input.HireDate != nil {
		hireDate = *input.HireDate
	}
	user := &types.User{
		FullName:         strings.TrimSpace(input.FullName),
		Email:            email,
		DepartmentID:     input.DepartmentID,
		MentorID:         input.MentorID,
		HireDate:         hireDate,
		OnboardingStatus: types.StatusNotStarted,
		JobTitle:         input.JobTitle,
	}

	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := us.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		if len(input.Roles) > 0 {
			roles, err := us.roleRepo.GetByNames(ctx, tx, input.Roles)
			if err != nil {
				return err
			}
			if err := us.userRepo.ReplaceRoles(ctx, tx, user, roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return us.GetByID(ctx, user.ID)
}

func (us *userService) GetByID(ctx context.Context, userID uint) (*UserView, error) {
	user, err := us.userRepo.GetByIDPreloaded(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("user %d", userID)
	}
	return UserToView(user), nil
}

func (us *userService) List(ctx context.Context) ([]*UserView, error) {
	users, err := us.userRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	views := make([]*UserView, 0, len(users))
	for _, user := range users {
		views = append(views, UserToView(user))
	}
	return views, nil
}

func (us *userService) Update(ctx context.Context, userID uint, input UpdateUserInput) (*UserView, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("user %d", userID)
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			exists, err := us.userRepo.EmailExists(ctx, nil, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, apperr.Validationf("email %q is already in use", email)
			}
			user.Email = email
		}
	}
	if input.DepartmentID != nil {
		dept, err := us.deptRepo.GetByID(ctx, nil, *input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if dept == nil {
			return nil, apperr.NotFoundf("department %d", *input.DepartmentID)
		}
		user.DepartmentID = *input.DepartmentID
	}
	if input.MentorID != nil {
		if *input.MentorID == userID {
			return nil, apperr.Validationf("a user cannot mentor themselves")
		}
		mentor, err := us.userRepo.GetByID(ctx, nil, *input.MentorID)
		if err != nil {
			return nil, err
		}
		if mentor == nil {
			return nil, apperr.NotFoundf("mentor %d", *input.MentorID)
		}
		user.MentorID = input.MentorID
	}
	if input.HireDate != nil {
		user.HireDate = *input.HireDate
	}
	if input.Status != nil {
		if _, ok := validStatuses[*input.Status]; !ok {
			return nil, apperr.Validationf("unknown onboarding status %q", *input.Status)
		}
		user.OnboardingStatus = *input.Status
	}
	if input.JobTitle != nil {
		user.JobTitle = input.JobTitle
	}

	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.userRepo.Update(ctx, tx, user); err != nil {
			return err
		}
		if input.Roles != nil {
			roles, err := us.roleRepo.GetByNames(ctx, tx, input.Roles)
			if err != nil {
				return err
			}
			if err := us.userRepo.ReplaceRoles(ctx, tx, user, roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return us.GetByID(ctx, userID)
}

func (us *userService) Delete(ctx context.Context, userID uint) error {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFoundf("user %d", userID)
	}
	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Mentees keep existing with no mentor; deletion never cascades to
		// other users.
		if err := us.userRepo.ClearMentorReferences(ctx, tx, userID); err != nil {
			return err
		}
		return us.userRepo.Delete(ctx, tx, userID)
	})
}
