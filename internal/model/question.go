package model

import "gorm.io/datatypes"

const (
	QuestionTypeMCQ        = "mcq"
	QuestionTypeTrueFalse  = "true_false"
	QuestionTypeNumerical  = "numerical"
	QuestionTypeSubjective = "subjective"
)

// swagger:model Question
type Question struct {
	BaseModel
	QuestionText string            `gorm:"type:text;not null" json:"questionText"`
	QuestionType string            `gorm:"size:30;default:'mcq'" json:"questionType"`
	Difficulty   string            `gorm:"size:20" json:"difficulty"`
	Explanation  string            `gorm:"type:text" json:"explanation"`
	Metadata     datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	Options      []QuestionOption  `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	Media        []QuestionMedia   `gorm:"foreignKey:QuestionID" json:"media,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// HasSingleCorrectOption 数值题、主观题没有唯一正确选项
func (q *Question) HasSingleCorrectOption() bool {
	switch q.QuestionType {
	case QuestionTypeNumerical, QuestionTypeSubjective:
		return false
	}
	return true
}

type QuestionOption struct {
	BaseModel
	QuestionID  uint   `gorm:"not null;index" json:"questionId"`
	OptionText  string `gorm:"type:text;not null" json:"optionText"`
	OptionOrder int    `gorm:"default:0" json:"optionOrder"`
	IsCorrect   bool   `gorm:"default:false" json:"isCorrect"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}

type QuestionMedia struct {
	BaseModel
	QuestionID uint   `gorm:"not null;index" json:"questionId"`
	OptionID   *uint  `gorm:"index" json:"optionId,omitempty"`
	MediaType  string `gorm:"size:20" json:"mediaType"` // image / audio / video
	StorageKey string `gorm:"size:500;not null" json:"storageKey"`
	Caption    string `gorm:"size:255" json:"caption"`
}

func (QuestionMedia) TableName() string {
	return "question_media"
}
