package model

import "time"

// Session 考试会话，token 是引擎对外唯一的会话凭据
// swagger:model Session
type Session struct {
	BaseModel
	Token           string     `gorm:"size:64;not null;uniqueIndex" json:"token"`
	AttemptID       uint       `gorm:"not null;uniqueIndex" json:"attemptId"`
	UserID          uint       `gorm:"not null;index" json:"userId"`
	SessionStart    time.Time  `gorm:"not null" json:"sessionStart"`
	SessionEnd      *time.Time `json:"sessionEnd,omitempty"`
	TabSwitches     int        `gorm:"not null;default:0" json:"tabSwitches"`
	ScreenshotCount int        `gorm:"not null;default:0" json:"screenshotCount"`
	ViolationCount  int        `gorm:"not null;default:0" json:"violationCount"`
	HeartbeatAt     *time.Time `json:"heartbeatAt,omitempty"`
}

func (Session) TableName() string {
	return "test_sessions"
}
