package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventTabSwitch      = "tab_switch"
	EventFullscreenExit = "fullscreen_exit"
	EventScreenshot     = "screenshot"
	EventFaceDetection  = "face_detection"
	EventMultipleFaces  = "multiple_faces"
	EventHeartbeat      = "heartbeat"
)

// 事件类型到会话计数列，空串表示不计数
var sessionCounterColumns = map[string]string{
	EventTabSwitch:      "tab_switches",
	EventFullscreenExit: "",
	EventScreenshot:     "screenshot_count",
	EventFaceDetection:  "violation_count",
	EventMultipleFaces:  "violation_count",
	EventHeartbeat:      "",
}

// CounterColumn 返回事件对应的计数列；ok=false 表示未知事件类型
func CounterColumn(eventType string) (column string, ok bool) {
	column, ok = sessionCounterColumns[eventType]
	return
}

// ProctoringEvent 监考事件，只追加，供后台审查
type ProctoringEvent struct {
	AppendOnly
	SessionID  uint           `gorm:"not null;index" json:"sessionId"`
	AttemptID  uint           `gorm:"not null;index" json:"attemptId"`
	UserID     uint           `gorm:"not null;index" json:"userId"`
	EventType  string         `gorm:"size:30;not null;index" json:"eventType"`
	Metadata   datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
	OccurredAt time.Time      `gorm:"not null" json:"occurredAt"`
}

func (ProctoringEvent) TableName() string {
	return "proctoring_events"
}
