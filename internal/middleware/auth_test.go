package middleware

import (
	"context"
	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const secret = "test-secret-that-is-long-enough-for-hs256"

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret}}
	r := gin.New()
	r.Use(AuthMiddleware(cfg))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": util.GetUserFromContext(c).UserID})
	})
	r.GET("/admin", RoleMiddleware(model.Admin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	valid, _ := util.GenerateJWT(7, model.Student, "s@example.com", secret, time.Hour)
	expired, _ := util.GenerateJWT(7, model.Student, "s@example.com", secret, -time.Minute)
	forged, _ := util.GenerateJWT(7, model.Student, "s@example.com", "another-secret-another-secret-xx", time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	r := newAuthRouter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("got %d want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := newAuthRouter()
	for role, want := range map[model.UserRole]int{model.Student: http.StatusForbidden, model.Admin: http.StatusOK} {
		tok, _ := util.GenerateJWT(1, role, "x@example.com", secret, time.Hour)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("role %s: got %d want %d", role, w.Code, want)
		}
	}
}

type recordingRepo struct {
	seen chan uint
}

func (r *recordingRepo) UpdateLastSeen(ctx context.Context, userID uint, at time.Time) error {
	r.seen <- userID
	return nil
}

func activityRouter(repo UserActivityRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		var id uint = 42
		if c.Query("u") == "2" {
			id = 43
		}
		c.Set("user", &util.Claims{UserID: id})
		c.Next()
	}, ActivityMiddleware(repo, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestActivityMiddlewareThrottlesPerUser(t *testing.T) {
	repo := &recordingRepo{seen: make(chan uint, 10)}
	r := activityRouter(repo)

	for i := 0; i < 5; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?u=2", nil))

	got := map[uint]int{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-repo.seen:
			got[id]++
		case <-time.After(2 * time.Second):
			t.Fatalf("expected two writes, got %v", got)
		}
	}
	select {
	case id := <-repo.seen:
		t.Fatalf("unexpected extra write for user %d", id)
	case <-time.After(100 * time.Millisecond):
	}
	if got[42] != 1 || got[43] != 1 {
		t.Fatalf("one write per user expected, got %v", got)
	}
}

func TestActivityTrackerInterval(t *testing.T) {
	tr := &activityTracker{last: map[uint]time.Time{}, interval: time.Minute, maxUsers: 2}
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if !tr.due(1, base) || tr.due(1, base.Add(30*time.Second)) {
		t.Fatal("second write inside the interval should be skipped")
	}
	if !tr.due(1, base.Add(time.Minute)) {
		t.Fatal("write is due once the interval passes")
	}

	tr.due(2, base.Add(time.Minute))
	tr.due(3, base.Add(3*time.Minute))
	if _, ok := tr.last[2]; ok {
		t.Fatal("stale entries are pruned when the tracker is full")
	}
}
