package types

import "time"

type Module struct {
	ID           uint        `gorm:"primaryKey" json:"module_id"`
	Title        string      `gorm:"column:title;not null" json:"title"`
	Description  *string     `gorm:"column:description" json:"description,omitempty"`
	Content      *string     `gorm:"column:content" json:"content,omitempty"`
	IsMandatory  bool        `gorm:"column:is_mandatory;not null;default:false" json:"is_mandatory"`
	DepartmentID *uint       `gorm:"column:department_id;index" json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID;references:ID" json:"department,omitempty"`
	PassingScore int         `gorm:"column:passing_score;not null" json:"passing_score"`
	MaxAttempts  int         `gorm:"column:max_attempts;not null" json:"max_attempts"`
	Questions    []*Question `gorm:"foreignKey:ModuleID" json:"questions,omitempty"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "modules" }
