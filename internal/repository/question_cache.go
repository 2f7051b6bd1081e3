package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// QuestionCache 以试卷为粒度缓存学生端题目快照（序列化后的字节），题库只读因此只靠 TTL 过期
type QuestionCache struct {
	Client *redis.Client
	Prefix string
}

func NewQuestionCache(client *redis.Client) *QuestionCache {
	return &QuestionCache{Client: client, Prefix: "examprep:test_questions:"}
}

func (c *QuestionCache) key(testID uint) string {
	return fmt.Sprintf("%s%d", c.Prefix, testID)
}

func (c *QuestionCache) Get(ctx context.Context, testID uint) ([]byte, bool, error) {
	raw, err := c.Client.Get(ctx, c.key(testID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *QuestionCache) Set(ctx context.Context, testID uint, raw []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, c.key(testID), raw, ttl).Err()
}
