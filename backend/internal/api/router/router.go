package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chrissi82/Dashboard-IU/backend/config"
	"github.com/chrissi82/Dashboard-IU/backend/internal/api/handler"
	"github.com/chrissi82/Dashboard-IU/backend/internal/api/middleware"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/jwt"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不启用 Token 黑名单与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", health(rdb))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，按 IP 限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, time.Minute, logger))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 学期模块
			semesters := authorized.Group("/semesters")
			{
				semesters.GET("", h.Semester.ListSemesters)
				semesters.POST("", h.Semester.CreateSemester)
				semesters.GET("/:name", h.Semester.GetSemester)
				semesters.GET("/:name/timing", h.Semester.GetTiming)
				semesters.POST("/:name/modules", h.Semester.AddModule)
				semesters.PUT("/:name/modules/:id", h.Semester.ReplaceModule)
				semesters.DELETE("/:name/modules/:id", h.Semester.RemoveModule)
			}

			// 仪表盘
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("", h.Dashboard.Overview)
				dashboard.GET("/credits", h.Dashboard.Credits)
				dashboard.GET("/grades", h.Dashboard.Grades)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/transcript", h.Export.ExportTranscript)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}

// health 存活检查；启用 Redis 时附带其连通状态（Redis 不可用不影响核心功能）
func health(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "disabled"
		if rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			status = "ok"
			if err := rdb.Ping(ctx); err != nil {
				status = "unavailable"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": status})
	}
}
