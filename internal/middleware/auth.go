package middleware

import (
	"context"
	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.RespondError(c, util.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			util.RespondError(c, util.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.RespondError(c, util.ErrUnauthorized)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(ctx context.Context, userID uint, at time.Time) error
}

// activityTracker 记录每个用户上次写入活跃时间，间隔内不重复写库
type activityTracker struct {
	mu       sync.Mutex
	last     map[uint]time.Time
	interval time.Duration
	maxUsers int
}

func (t *activityTracker) due(userID uint, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.last[userID]; ok && now.Sub(prev) < t.interval {
		return false
	}
	if len(t.last) >= t.maxUsers {
		for id, at := range t.last {
			if now.Sub(at) >= t.interval {
				delete(t.last, id)
			}
		}
	}
	t.last[userID] = now
	return true
}

// ActivityMiddleware 异步刷新 last_seen，同一用户 interval 内最多写一次
func ActivityMiddleware(repo UserActivityRepo, interval time.Duration) gin.HandlerFunc {
	tracker := &activityTracker{last: make(map[uint]time.Time), interval: interval, maxUsers: 10000}
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil && tracker.due(claims.UserID, time.Now()) {
			userID := claims.UserID
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := repo.UpdateLastSeen(ctx, userID, time.Now()); err != nil {
					logger.Log.Debug("update last seen failed", zap.Uint("user_id", userID), zap.Error(err))
				}
			}()
		}
		c.Next()
	}
}
