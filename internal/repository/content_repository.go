package repository

import (
	"context"
	"examprep_backend/internal/model"
	"sort"

	"gorm.io/gorm"
)

// ContentRepository 试卷与题库只读访问
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) FindTest(ctx context.Context, id uint) (*model.Test, error) {
	var t model.Test
	if err := r.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListSchemes 试卷的评分方案，按 question_order 排序
func (r *ContentRepository) ListSchemes(ctx context.Context, testID uint) ([]model.TestQuestion, error) {
	var links []model.TestQuestion
	err := r.DB.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("question_order ASC, id ASC").
		Find(&links).Error
	return links, err
}

// LoadQuestionsJoined 一次联表查询取题目，选项与媒体预加载
func (r *ContentRepository) LoadQuestionsJoined(ctx context.Context, testID uint) ([]model.TestQuestion, error) {
	var links []model.TestQuestion
	err := r.DB.WithContext(ctx).
		Joins("Question").
		Preload("Question.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_order ASC, id ASC")
		}).
		Preload("Question.Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("test_questions.test_id = ?", testID).
		Order("test_questions.question_order ASC, test_questions.id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	// 题目被删除时 Joins 得到空的 Question
	kept := links[:0]
	for _, l := range links {
		if l.Question != nil && l.Question.ID != 0 {
			kept = append(kept, l)
		}
	}
	return kept, nil
}

// LoadQuestionsDecomposed 分步查询后在内存中组装，联表查询失败时使用
func (r *ContentRepository) LoadQuestionsDecomposed(ctx context.Context, testID uint) ([]model.TestQuestion, error) {
	db := r.DB.WithContext(ctx)

	links, err := r.ListSchemes(ctx, testID)
	if err != nil || len(links) == 0 {
		return links, err
	}

	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.QuestionID)
	}

	var questions []model.Question
	if err := db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	var options []model.QuestionOption
	if err := db.Where("question_id IN ?", ids).Order("option_order ASC, id ASC").Find(&options).Error; err != nil {
		return nil, err
	}
	var media []model.QuestionMedia
	if err := db.Where("question_id IN ?", ids).Order("id ASC").Find(&media).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	for _, o := range options {
		if q, ok := byID[o.QuestionID]; ok {
			q.Options = append(q.Options, o)
		}
	}
	for _, m := range media {
		if q, ok := byID[m.QuestionID]; ok {
			q.Media = append(q.Media, m)
		}
	}

	result := make([]model.TestQuestion, 0, len(links))
	for _, l := range links {
		q, ok := byID[l.QuestionID]
		if !ok {
			continue
		}
		l.Question = q
		result = append(result, l)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].QuestionOrder < result[j].QuestionOrder
	})
	return result, nil
}

// FindCorrectOptions 返回题目的唯一正确选项；没有或有多个正确选项的题目不出现在结果中
func (r *ContentRepository) FindCorrectOptions(ctx context.Context, questionIDs []uint) (map[uint]uint, error) {
	correct := make(map[uint]uint)
	if len(questionIDs) == 0 {
		return correct, nil
	}

	var rows []struct {
		QuestionID   uint
		OptionID     uint
		QuestionType string
	}
	err := r.DB.WithContext(ctx).
		Table("question_options").
		Select("question_options.question_id, question_options.id AS option_id, questions.question_type").
		Joins("JOIN questions ON questions.id = question_options.question_id").
		Where("question_options.question_id IN ? AND question_options.is_correct = ?", questionIDs, true).
		Where("question_options.deleted_at IS NULL AND questions.deleted_at IS NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		q := model.Question{QuestionType: row.QuestionType}
		if !q.HasSingleCorrectOption() {
			continue
		}
		counts[row.QuestionID]++
		correct[row.QuestionID] = row.OptionID
	}
	for qid, n := range counts {
		if n != 1 {
			delete(correct, qid)
		}
	}
	return correct, nil
}
