package types

import (
	"time"
)

type User struct {
	ID               uint        `gorm:"primaryKey" json:"user_id"`
	ExternalID       *string     `gorm:"column:external_id;index" json:"external_id,omitempty"`
	FullName         string      `gorm:"column:full_name;not null" json:"full_name"`
	Email            string      `gorm:"column:email;uniqueIndex;not null" json:"email"`
	DepartmentID     uint        `gorm:"column:department_id;not null;index" json:"department_id"`
	Department       *Department `gorm:"foreignKey:DepartmentID;references:ID" json:"department,omitempty"`
	MentorID         *uint       `gorm:"column:mentor_id" json:"mentor_id,omitempty"`
	Mentor           *User       `gorm:"foreignKey:MentorID;references:ID" json:"mentor,omitempty"`
	HireDate         time.Time   `gorm:"column:hire_date;not null" json:"hire_date"`
	OnboardingStatus string      `gorm:"column:onboarding_status;not null;default:'Not started'" json:"onboarding_status"`
	JobTitle         *string     `gorm:"column:job_title" json:"job_title,omitempty"`
	RimsLastSyncAt   *time.Time  `gorm:"column:rims_last_sync_at" json:"rims_last_sync_at,omitempty"`
	Roles            []*Role     `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedAt        time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }
