package repository

import (
	"context"
	"examprep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

var answerConflict = []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}}

// Upsert 按 (attempt_id, question_id) 覆盖写入；withTime=false 时保留已有用时
func (r *AnswerRepository) Upsert(ctx context.Context, answers []model.AttemptAnswer, withTime bool) error {
	if len(answers) == 0 {
		return nil
	}
	columns := []string{"selected_option_id", "answer_text", "answered_at", "updated_at"}
	if withTime {
		columns = append(columns, "time_spent_seconds")
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   answerConflict,
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&answers).Error
}

func (r *AnswerRepository) ListByAttempt(ctx context.Context, attemptID uint) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.DB.WithContext(ctx).Where("attempt_id = ?", attemptID).Order("question_id ASC").Find(&answers).Error
	return answers, err
}

// SaveGrades 写回每道题的得分与对错
func (r *AnswerRepository) SaveGrades(ctx context.Context, answers []model.AttemptAnswer) error {
	db := r.DB.WithContext(ctx)
	for _, a := range answers {
		err := db.Model(&model.AttemptAnswer{}).
			Where("attempt_id = ? AND question_id = ?", a.AttemptID, a.QuestionID).
			Updates(map[string]interface{}{
				"marks_obtained": a.MarksObtained,
				"is_correct":     a.IsCorrect,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
