package model

import "time"

// AttemptAnswer 每次作答每道题一条，自动保存时覆盖
type AttemptAnswer struct {
	BaseModel
	AttemptID        uint      `gorm:"not null;uniqueIndex:idx_attempt_question" json:"attemptId"`
	QuestionID       uint      `gorm:"not null;uniqueIndex:idx_attempt_question" json:"questionId"`
	SelectedOptionID *uint     `json:"selectedOptionId"`
	AnswerText       *string   `gorm:"type:text" json:"answerText"`
	TimeSpentSeconds int       `gorm:"not null;default:0" json:"timeSpentSeconds"`
	AnsweredAt       time.Time `json:"answeredAt"`
	// 交卷评分后写入
	MarksObtained *float64 `json:"marksObtained,omitempty"`
	IsCorrect     *bool    `json:"isCorrect,omitempty"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
