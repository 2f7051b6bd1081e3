package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// Attempt 一次考试作答，同一 (user, test) 至多一条 in_progress
// swagger:model Attempt
type Attempt struct {
	BaseModel
	UserID          uint          `gorm:"not null;index:idx_attempt_user_test" json:"userId"`
	TestID          uint          `gorm:"not null;index:idx_attempt_user_test" json:"testId"`
	SessionID       *uint         `gorm:"index" json:"sessionId,omitempty"`
	Status          AttemptStatus `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	StartTime       time.Time     `gorm:"not null" json:"startTime"`
	EndTime         *time.Time    `json:"endTime,omitempty"`
	SubmitTime      *time.Time    `json:"submitTime,omitempty"`
	MarksObtained   float64       `gorm:"default:0" json:"marksObtained"`
	TotalMarks      float64       `gorm:"default:0" json:"totalMarks"`
	Percentage      float64       `gorm:"default:0" json:"percentage"`
	CorrectCount    int           `gorm:"default:0" json:"correctCount"`
	IncorrectCount  int           `gorm:"default:0" json:"incorrectCount"`
	UnansweredCount int           `gorm:"default:0" json:"unansweredCount"`
	IsPassed        bool          `gorm:"default:false" json:"isPassed"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) IsCompleted() bool {
	return a.Status == AttemptCompleted
}
