package types

type AnswerOption struct {
	ID         uint   `gorm:"primaryKey" json:"answer_id"`
	QuestionID uint   `gorm:"column:question_id;not null;index" json:"question_id"`
	AnswerText string `gorm:"column:answer_text;not null" json:"answer_text"`
	IsCorrect  bool   `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
}

func (AnswerOption) TableName() string { return "answer_options" }
