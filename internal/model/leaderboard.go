package model

import "time"

// LeaderboardEntry 每次交卷追加一条
type LeaderboardEntry struct {
	AppendOnly
	TestID            uint      `gorm:"not null;index" json:"testId"`
	UserID            uint      `gorm:"not null;index" json:"userId"`
	AttemptID         uint      `gorm:"not null;index" json:"attemptId"`
	Score             float64   `json:"score"`
	Percentage        float64   `json:"percentage"`
	CompletionSeconds int       `json:"completionSeconds"`
	EntryDate         time.Time `gorm:"type:date;index" json:"entryDate"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}
