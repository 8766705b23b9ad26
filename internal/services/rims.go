package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/apperr"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/types"
)

// RimsEmployee is the personnel record shape returned by the RIMS HR system.
type RimsEmployee struct {
	UID            string  `json:"uid"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	JobTitle       *string `json:"job_title,omitempty"`
	DepartmentUID  string  `json:"department_uid"`
	DepartmentName string  `json:"department_name"`
}

// RimsClient looks up personnel records in RIMS. Both lookups return
// (nil, nil) when no record matches.
type RimsClient interface {
	FindByUID(ctx context.Context, uid string) (*RimsEmployee, error)
	FindByEmail(ctx context.Context, email string) (*RimsEmployee, error)
}

type rimsHTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logger.Logger
}

func NewRimsHTTPClient(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) RimsClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &rimsHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log.With("client", "RimsHTTPClient"),
	}
}

func (rc *rimsHTTPClient) FindByUID(ctx context.Context, uid string) (*RimsEmployee, error) {
	return rc.get(ctx, fmt.Sprintf("%s/api/employees/%s", rc.baseURL, url.PathEscape(uid)))
}

func (rc *rimsHTTPClient) FindByEmail(ctx context.Context, email string) (*RimsEmployee, error) {
	return rc.get(ctx, fmt.Sprintf("%s/api/employees?email=%s", rc.baseURL, url.QueryEscape(email)))
}

func (rc *rimsHTTPClient) get(ctx context.Context, rawURL string) (*RimsEmployee, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", rc.apiKey)
	resp, err := rc.client.Do(req)
	if err != nil {
		// Directory being unreachable is treated the same as no match so
		// local records keep working while RIMS is down.
		rc.log.Warn("rims request failed", "url", rawURL, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rims responded with status %d", resp.StatusCode)
	}
	var employee RimsEmployee
	if err := json.NewDecoder(resp.Body).Decode(&employee); err != nil {
		return nil, fmt.Errorf("decode rims response: %w", err)
	}
	if employee.UID == "" {
		return nil, nil
	}
	return &employee, nil
}

type RimsService interface {
	SyncUserByUID(ctx context.Context, uid string) (*UserView, error)
	SyncUserByEmail(ctx context.Context, email string) (*UserView, error)
}

type rimsService struct {
	db       *gorm.DB
	log      *logger.Logger
	client   RimsClient
	userRepo repos.UserRepo
	deptRepo repos.DepartmentRepo
}

func NewRimsService(db *gorm.DB, log *logger.Logger, client RimsClient, userRepo repos.UserRepo, deptRepo repos.DepartmentRepo) RimsService {
	return &rimsService{
		db:       db,
		log:      log.With("service", "RimsService"),
		client:   client,
		userRepo: userRepo,
		deptRepo: deptRepo,
	}
}

// SyncUserByUID pulls the RIMS record for uid and creates or updates the
// matching local user and department.
func (rs *rimsService) SyncUserByUID(ctx context.Context, uid string) (*UserView, error) {
	employee, err := rs.client.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, apperr.NotFoundf("rims employee %q", uid)
	}
	var userID uint
	err = rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dept, err := rs.ensureDepartment(ctx, tx, employee)
		if err != nil {
			return err
		}
		user, err := rs.userRepo.GetByExternalID(ctx, tx, employee.UID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if user == nil {
			user = &types.User{
				ExternalID:       &employee.UID,
				FullName:         employee.FullName,
				Email:            strings.ToLower(employee.Email),
				DepartmentID:     dept.ID,
				HireDate:         now,
				OnboardingStatus: types.StatusNotStarted,
				JobTitle:         employee.JobTitle,
				RimsLastSyncAt:   &now,
			}
			if _, err := rs.userRepo.Create(ctx, tx, user); err != nil {
				return err
			}
		} else {
			user.FullName = employee.FullName
			user.Email = strings.ToLower(employee.Email)
			user.DepartmentID = dept.ID
			user.JobTitle = employee.JobTitle
			user.RimsLastSyncAt = &now
			if err := rs.userRepo.Update(ctx, tx, user); err != nil {
				return err
			}
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	user, err := rs.userRepo.GetByIDPreloaded(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	return UserToView(user), nil
}

// SyncUserByEmail resolves the RIMS record by email, falling back to the
// local user's stored external id when the directory lookup misses.
func (rs *rimsService) SyncUserByEmail(ctx context.Context, email string) (*UserView, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	employee, err := rs.client.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if employee != nil {
		return rs.SyncUserByUID(ctx, employee.UID)
	}
	local, err := rs.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, err
	}
	if local == nil || local.ExternalID == nil {
		return nil, apperr.NotFoundf("rims employee with email %q", email)
	}
	return rs.SyncUserByUID(ctx, *local.ExternalID)
}

func (rs *rimsService) ensureDepartment(ctx context.Context, tx *gorm.DB, employee *RimsEmployee) (*types.Department, error) {
	if employee.DepartmentUID != "" {
		dept, err := rs.deptRepo.GetByExternalID(ctx, tx, employee.DepartmentUID)
		if err != nil {
			return nil, err
		}
		if dept != nil {
			return dept, nil
		}
	}
	name := strings.TrimSpace(employee.DepartmentName)
	if name == "" {
		return nil, apperr.Validationf("rims employee %q has no department", employee.UID)
	}
	dept, err := rs.deptRepo.GetByName(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if dept != nil {
		if dept.ExternalID == nil && employee.DepartmentUID != "" {
			dept.ExternalID = &employee.DepartmentUID
			if err := rs.deptRepo.Update(ctx, tx, dept); err != nil {
				return nil, err
			}
		}
		return dept, nil
	}
	dept = &types.Department{Name: name}
	if employee.DepartmentUID != "" {
		dept.ExternalID = &employee.DepartmentUID
	}
	if _, err := rs.deptRepo.Create(ctx, tx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}
