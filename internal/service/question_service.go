package service

import (
	"context"
	"encoding/json"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
	"examprep_backend/pkg/monitoring"
	"sync/atomic"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// QuestionSource 两种取题方式，结果形状与顺序一致
type QuestionSource interface {
	LoadQuestionsJoined(ctx context.Context, testID uint) ([]model.TestQuestion, error)
	LoadQuestionsDecomposed(ctx context.Context, testID uint) ([]model.TestQuestion, error)
}

// QuestionCache 只存 cachedQuestion 的 JSON，不含答案与解析
type QuestionCache interface {
	Get(ctx context.Context, testID uint) ([]byte, bool, error)
	Set(ctx context.Context, testID uint, raw []byte, ttl time.Duration) error
}

// OptionView 学生端选项，不含正确答案
type OptionView struct {
	ID          uint   `json:"id"`
	OptionText  string `json:"optionText"`
	OptionOrder int    `json:"optionOrder"`
}

type MediaView struct {
	ID        uint   `json:"id"`
	OptionID  *uint  `json:"optionId,omitempty"`
	MediaType string `json:"mediaType"`
	Caption   string `json:"caption,omitempty"`
	URL       string `json:"url"`
}

type QuestionView struct {
	ID            uint         `json:"id"`
	QuestionText  string       `json:"questionText"`
	QuestionType  string       `json:"questionType"`
	Difficulty    string       `json:"difficulty,omitempty"`
	Marks         float64      `json:"marks"`
	NegativeMarks float64      `json:"negativeMarks"`
	QuestionOrder int          `json:"questionOrder"`
	Options       []OptionView `json:"options"`
	Media         []MediaView  `json:"media"`
}

// cachedQuestion 缓存里的一道题，媒体地址按 MediaKeys 在读取时重新签发
type cachedQuestion struct {
	View      QuestionView `json:"view"`
	MediaKeys []string     `json:"mediaKeys"`
}

type QuestionService struct {
	Source  QuestionSource
	Cache   QuestionCache
	Storage StorageProvider
	ttl     atomic.Int64
}

func NewQuestionService(source QuestionSource, cache QuestionCache, storage StorageProvider, ttl time.Duration) *QuestionService {
	s := &QuestionService{Source: source, Cache: cache, Storage: storage}
	s.SetCacheTTL(ttl)
	return s
}

func (s *QuestionService) SetCacheTTL(ttl time.Duration) {
	s.ttl.Store(int64(ttl))
}

// ResolveQuestions 按 question_order 返回学生端题目列表
func (s *QuestionService) ResolveQuestions(ctx context.Context, testID uint) ([]QuestionView, error) {
	entries, err := s.load(ctx, testID)
	if err != nil {
		return nil, err
	}
	return s.withMediaURLs(ctx, entries), nil
}

func (s *QuestionService) load(ctx context.Context, testID uint) ([]cachedQuestion, error) {
	if s.Cache != nil {
		raw, ok, err := s.Cache.Get(ctx, testID)
		if err != nil {
			logger.Log.Warn("Question cache read failed", zap.Uint("test_id", testID), zap.Error(err))
		} else if ok {
			var entries []cachedQuestion
			if err := json.Unmarshal(raw, &entries); err == nil {
				return entries, nil
			}
			logger.Log.Warn("Question cache entry corrupt, reloading", zap.Uint("test_id", testID))
		}
	}

	links, err := s.Source.LoadQuestionsJoined(ctx, testID)
	if err != nil || len(links) == 0 {
		if err != nil {
			logger.Log.Warn("Joined question query failed, using fallback", zap.Uint("test_id", testID), zap.Error(err))
		}
		monitoring.QuestionFallbacks.Inc()
		links, err = s.Source.LoadQuestionsDecomposed(ctx, testID)
		if err != nil {
			return nil, util.ErrQuestionsUnresolved.Wrap(err)
		}
	}

	entries, err := toEntries(links)
	if err != nil {
		return nil, util.ErrQuestionsUnresolved.Wrap(err)
	}

	if s.Cache != nil && len(entries) > 0 {
		if ttl := time.Duration(s.ttl.Load()); ttl > 0 {
			raw, err := json.Marshal(entries)
			if err == nil {
				err = s.Cache.Set(ctx, testID, raw, ttl)
			}
			if err != nil {
				logger.Log.Warn("Question cache write failed", zap.Uint("test_id", testID), zap.Error(err))
			}
		}
	}
	return entries, nil
}

// toEntries 转成学生端形状，正确答案和解析在这一步被丢弃
func toEntries(links []model.TestQuestion) ([]cachedQuestion, error) {
	entries := make([]cachedQuestion, 0, len(links))
	for _, l := range links {
		if l.Question == nil {
			continue
		}
		var v QuestionView
		if err := copier.Copy(&v, l.Question); err != nil {
			return nil, err
		}
		v.Marks = l.Marks
		v.NegativeMarks = l.NegativeMarks
		v.QuestionOrder = l.QuestionOrder
		if v.Options == nil {
			v.Options = []OptionView{}
		}

		v.Media = make([]MediaView, 0, len(l.Question.Media))
		keys := make([]string, 0, len(l.Question.Media))
		for _, m := range l.Question.Media {
			var mv MediaView
			if err := copier.Copy(&mv, &m); err != nil {
				return nil, err
			}
			mv.URL = ""
			v.Media = append(v.Media, mv)
			keys = append(keys, m.StorageKey)
		}
		entries = append(entries, cachedQuestion{View: v, MediaKeys: keys})
	}
	return entries, nil
}

func (s *QuestionService) withMediaURLs(ctx context.Context, entries []cachedQuestion) []QuestionView {
	views := make([]QuestionView, 0, len(entries))
	for _, e := range entries {
		v := e.View
		v.Media = make([]MediaView, len(e.View.Media))
		copy(v.Media, e.View.Media)
		if s.Storage != nil {
			for i := range v.Media {
				if i >= len(e.MediaKeys) {
					break
				}
				u, err := s.Storage.GetURL(ctx, e.MediaKeys[i])
				if err != nil {
					logger.Log.Warn("Media url resolution failed", zap.Uint("media_id", v.Media[i].ID), zap.Error(err))
				}
				v.Media[i].URL = u
			}
		}
		views = append(views, v)
	}
	return views
}
