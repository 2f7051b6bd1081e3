package repository

import (
	"context"
	"examprep_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptRepository) FindByID(ctx context.Context, id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) LinkSession(ctx context.Context, attemptID, sessionID uint) error {
	return r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ?", attemptID).
		Update("session_id", sessionID).Error
}

// Touch 自动保存时刷新最后活动时间
func (r *AttemptRepository) Touch(ctx context.Context, attemptID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Update("end_time", at).Error
}

// Complete 只在 in_progress 时写入成绩，返回 false 表示已被其他请求提交
func (r *AttemptRepository) Complete(ctx context.Context, attempt *model.Attempt) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attempt.ID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":           model.AttemptCompleted,
			"submit_time":      attempt.SubmitTime,
			"end_time":         attempt.EndTime,
			"marks_obtained":   attempt.MarksObtained,
			"total_marks":      attempt.TotalMarks,
			"percentage":       attempt.Percentage,
			"correct_count":    attempt.CorrectCount,
			"incorrect_count":  attempt.IncorrectCount,
			"unanswered_count": attempt.UnansweredCount,
			"is_passed":        attempt.IsPassed,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteInProgress 物理删除 (user, test) 下 except 以外的 in_progress 作答及其会话与答案
func (r *AttemptRepository) DeleteInProgress(ctx context.Context, userID, testID, exceptID uint) (int64, error) {
	db := r.DB.WithContext(ctx)

	var ids []uint
	q := db.Model(&model.Attempt{}).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.AttemptInProgress)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := db.Unscoped().Where("attempt_id IN ?", ids).Delete(&model.AttemptAnswer{}).Error; err != nil {
		return 0, err
	}
	if err := db.Unscoped().Where("attempt_id IN ?", ids).Delete(&model.Session{}).Error; err != nil {
		return 0, err
	}
	res := db.Unscoped().Where("id IN ? AND status = ?", ids, model.AttemptInProgress).Delete(&model.Attempt{})
	return res.RowsAffected, res.Error
}

// ListOverdue 超过 start_time + 时长 + 宽限期仍未交卷的作答，不限时的试卷不参与
func (r *AttemptRepository) ListOverdue(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]model.Attempt, error) {
	db := r.DB.WithContext(ctx)
	// 时长至少一分钟，先用 SQL 粗筛，再逐条精确判断
	cutoff := now.Add(-grace - time.Minute)
	rows, err := db.Table("attempts").
		Select("attempts.*, tests.duration_minutes").
		Joins("JOIN tests ON tests.id = attempts.test_id").
		Where("attempts.status = ? AND attempts.deleted_at IS NULL", model.AttemptInProgress).
		Where("tests.duration_minutes > 0 AND attempts.start_time < ?", cutoff).
		Order("attempts.start_time ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []model.Attempt
	for rows.Next() {
		var row overdueRow
		if err := db.ScanRows(rows, &row); err != nil {
			return nil, err
		}
		deadline := row.StartTime.Add(time.Duration(row.DurationMinutes)*time.Minute + grace)
		if !now.After(deadline) {
			continue
		}
		overdue = append(overdue, row.Attempt)
		if limit > 0 && len(overdue) >= limit {
			break
		}
	}
	return overdue, rows.Err()
}

type overdueRow struct {
	model.Attempt
	DurationMinutes int
}
