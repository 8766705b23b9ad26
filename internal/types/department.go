package types

import "time"

type Department struct {
	ID         uint      `gorm:"primaryKey" json:"department_id"`
	Name       string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	ExternalID *string   `gorm:"column:external_id;index" json:"external_id,omitempty"`
	Users      []*User   `gorm:"foreignKey:DepartmentID" json:"users,omitempty"`
	Modules    []*Module `gorm:"foreignKey:DepartmentID" json:"modules,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Department) TableName() string { return "departments" }
