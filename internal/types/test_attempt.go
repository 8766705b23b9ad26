package types

import "time"

// TestAttempt is an append-only record of one graded quiz submission.
// The (user_id, module_id, attempt_number) unique index is what serializes
// racing submissions: the losing writer of a duplicate number is rejected.
type TestAttempt struct {
	ID             int64     `gorm:"primaryKey" json:"attempt_id"`
	UserID         uint      `gorm:"column:user_id;not null;uniqueIndex:idx_attempt_user_module_number" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	ModuleID       uint      `gorm:"column:module_id;not null;uniqueIndex:idx_attempt_user_module_number" json:"module_id"`
	Module         *Module   `gorm:"foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	AttemptDate    time.Time `gorm:"column:attempt_date;not null" json:"attempt_date"`
	AttemptNumber  int       `gorm:"column:attempt_number;not null;uniqueIndex:idx_attempt_user_module_number" json:"attempt_number"`
	Score          float64   `gorm:"column:score;type:numeric(5,2);not null" json:"score"`
	IsPassed       bool      `gorm:"column:is_passed;not null" json:"is_passed"`
	TotalQuestions int       `gorm:"column:total_questions;not null;default:0" json:"total_questions"`
	CorrectAnswers int       `gorm:"column:correct_answers;not null;default:0" json:"correct_answers"`
}

func (TestAttempt) TableName() string { return "test_attempts" }
