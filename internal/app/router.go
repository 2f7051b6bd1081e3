package app

import (
	"examprep_backend/docs"
	"examprep_backend/internal/config"
	"examprep_backend/internal/middleware"
	"examprep_backend/internal/model"
	"examprep_backend/pkg/monitoring"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 活跃时间写库的最小间隔
const activityInterval = 5 * time.Minute

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 考试会话
	sessions := router.Group("/api/sessions")
	sessions.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user, activityInterval))
	{
		sessions.POST("", c.session.CreateSession)
		sessions.GET("/:token", c.session.GetStatus)
		sessions.PATCH("/:token/answers", c.session.AutosaveAnswers)
		sessions.POST("/:token/submit", c.session.SubmitSession)
		sessions.POST("/:token/events", c.session.PostEvent)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/sessions/:token", c.session.AdminGetStatus)
	}
}
