package types

import "time"

type Question struct {
	ID            uint            `gorm:"primaryKey" json:"question_id"`
	ModuleID      uint            `gorm:"column:module_id;not null;index" json:"module_id"`
	Module        *Module         `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	QuestionText  string          `gorm:"column:question_text;not null" json:"question_text"`
	AnswerOptions []*AnswerOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answer_options,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Question) TableName() string { return "questions" }
