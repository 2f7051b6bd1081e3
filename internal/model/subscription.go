package model

import (
	"time"

	"gorm.io/datatypes"
)

// UnlimitedQuota 额度不限的哨兵值
const UnlimitedQuota = -1

const SubscriptionActive = "active"

type Plan struct {
	BaseModel
	Code             string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name             string `gorm:"size:100;not null" json:"name"`
	Tier             int    `gorm:"default:0" json:"tier"`
	ChapterTestLimit int    `gorm:"default:0" json:"chapterTestLimit"`
	SubjectTestLimit int    `gorm:"default:0" json:"subjectTestLimit"`
	MockTestLimit    int    `gorm:"default:0" json:"mockTestLimit"`
}

func (Plan) TableName() string {
	return "plans"
}

// LimitFor 返回该套餐在某一类别下的次数上限
func (p *Plan) LimitFor(category TestCategory) int {
	switch category {
	case CategoryMock:
		return p.MockTestLimit
	case CategorySubject:
		return p.SubjectTestLimit
	default:
		return p.ChapterTestLimit
	}
}

type UserSubscription struct {
	BaseModel
	UserID    uint       `gorm:"not null;index" json:"userId"`
	PlanID    uint       `gorm:"not null;index" json:"planId"`
	Plan      Plan       `gorm:"foreignKey:PlanID" json:"plan"`
	Status    string     `gorm:"size:20;not null;index" json:"status"`
	StartsAt  time.Time  `gorm:"not null" json:"startsAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

// Entitlement 某一类别下的额度快照（不落库）
type Entitlement struct {
	Category  TestCategory `json:"category"`
	Limit     int          `json:"limit"`
	Used      int          `json:"used"`
	Remaining int          `json:"remaining"`
	PlanCode  string       `json:"planCode,omitempty"`
}

func (e Entitlement) Unlimited() bool {
	return e.Limit == UnlimitedQuota
}

// NewEntitlement 根据上限与已用次数计算剩余次数
func NewEntitlement(category TestCategory, limit, used int, planCode string) Entitlement {
	remaining := 0
	if limit == UnlimitedQuota {
		remaining = UnlimitedQuota
	} else if limit > used {
		remaining = limit - used
	}
	return Entitlement{Category: category, Limit: limit, Used: used, Remaining: remaining, PlanCode: planCode}
}

// AttemptUsage 额度统计用的一条作答记录（不落库）
type AttemptUsage struct {
	TestID   uint
	Status   AttemptStatus
	TestType string
	Metadata datatypes.JSONMap
}

func (u AttemptUsage) Category() TestCategory {
	t := Test{TestType: u.TestType, Metadata: u.Metadata}
	return t.Category()
}

// Reclaimable 该作答会在重新开考 testID 时被回收，不计入已用次数
func (u AttemptUsage) Reclaimable(testID uint) bool {
	return testID != 0 && u.TestID == testID && u.Status == AttemptInProgress
}
