package types

import "time"

// UserModuleProgress tracks the completion lifecycle of one module for one
// user, independent of individual attempts. At most one row per pair.
type UserModuleProgress struct {
	ID             uint       `gorm:"primaryKey" json:"progress_id"`
	UserID         uint       `gorm:"column:user_id;not null;uniqueIndex:idx_progress_user_module" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	ModuleID       uint       `gorm:"column:module_id;not null;uniqueIndex:idx_progress_user_module" json:"module_id"`
	Module         *Module    `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Status         string     `gorm:"column:status;not null;default:'Not started'" json:"status"`
	StartDate      *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	CompletionDate *time.Time `gorm:"column:completion_date" json:"completion_date,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserModuleProgress) TableName() string { return "user_module_progress" }
