package types

import (
	"time"

	"gorm.io/datatypes"
)

// ActionLog is the append-only audit trail. Details carries the structured
// payload of the action (module title, attempt number, score, ...).
type ActionLog struct {
	ID         int64          `gorm:"primaryKey" json:"log_id"`
	UserID     uint           `gorm:"column:user_id;not null;index" json:"user_id"`
	User       *User          `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	ActionType string         `gorm:"column:action_type;not null;index" json:"action_type"`
	Timestamp  time.Time      `gorm:"column:timestamp;not null" json:"timestamp"`
	Details    datatypes.JSON `gorm:"type:jsonb;column:details" json:"details,omitempty"`
}

func (ActionLog) TableName() string { return "action_logs" }
