package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	TestTypeChapter    = "chapter"
	TestTypeTopic      = "topic"
	TestTypeSubject    = "subject"
	TestTypeMock       = "mock"
	TestTypeFullLength = "full_length"
)

// TestCategory 额度统计维度
type TestCategory string

const (
	CategoryChapter TestCategory = "chapter"
	CategorySubject TestCategory = "subject"
	CategoryMock    TestCategory = "mock"
)

// swagger:model Test
type Test struct {
	BaseModel
	Title           string            `gorm:"size:255;not null" json:"title"`
	Description     string            `gorm:"type:text" json:"description"`
	TestType        string            `gorm:"size:30;index" json:"testType"`
	Metadata        datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	IsPublished     bool              `gorm:"default:false;index" json:"isPublished"`
	IsFree          bool              `gorm:"default:true" json:"isFree"`
	Price           float64           `json:"price"`
	RequiredPlan    string            `gorm:"size:50" json:"requiredPlan,omitempty"`
	StartTime       *time.Time        `json:"startTime,omitempty"`
	EndTime         *time.Time        `json:"endTime,omitempty"`
	DurationMinutes int               `json:"durationMinutes"`
	TotalMarks      float64           `json:"totalMarks"`
	PassPercentage  float64           `json:"passPercentage"`
	NegativeMarking bool              `gorm:"default:false" json:"negativeMarking"`
}

func (Test) TableName() string {
	return "tests"
}

// Category 根据试卷类型与元数据归类到 chapter / subject / mock
func (t *Test) Category() TestCategory {
	switch strings.ToLower(t.TestType) {
	case TestTypeMock, TestTypeFullLength:
		return CategoryMock
	case TestTypeSubject:
		return CategorySubject
	case TestTypeChapter, TestTypeTopic:
		return CategoryChapter
	}
	if raw, ok := t.Metadata["category"].(string); ok {
		switch TestCategory(strings.ToLower(raw)) {
		case CategoryMock:
			return CategoryMock
		case CategorySubject:
			return CategorySubject
		}
	}
	return CategoryChapter
}

// Duration 试卷时长，0 表示不限时
func (t *Test) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// TestQuestion 试卷与题目的关联，同时承载评分方案
type TestQuestion struct {
	BaseModel
	TestID        uint      `gorm:"not null;uniqueIndex:idx_test_question" json:"testId"`
	QuestionID    uint      `gorm:"not null;uniqueIndex:idx_test_question" json:"questionId"`
	Marks         float64   `gorm:"not null;default:1" json:"marks"`
	NegativeMarks float64   `gorm:"not null;default:0" json:"negativeMarks"`
	QuestionOrder int       `gorm:"not null;default:0;index" json:"questionOrder"`
	Question      *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}
