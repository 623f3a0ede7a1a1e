package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"unihub-board/config"
	"unihub-board/internal/api/handler"
	"unihub-board/internal/api/middleware"
	"unihub-board/internal/model"
	"unihub-board/internal/service"
	"unihub-board/pkg/jwt"
	"unihub-board/pkg/metrics"
	"unihub-board/pkg/redis"
)

// Deps 路由依赖
type Deps struct {
	Config    *config.Config
	Handler   *handler.Handler
	Auth      service.AuthService
	Inspector *jwt.Inspector
	Redis     *redis.Client
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	cfg := d.Config
	h := d.Handler

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger, "/health", "/metrics"))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if d.Redis != nil {
			if err := d.Redis.Ping(c.Request.Context()); err != nil {
				status["redis"] = "unavailable"
			} else {
				status["redis"] = "ok"
			}
		}
		c.JSON(http.StatusOK, status)
	})

	// ── 指标 ──
	if cfg.Server.MetricsRoute && d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	// ── 控制台 API ──
	console := r.Group("/api/v1/console")
	console.Use(middleware.RateLimit(d.Redis, cfg.Limit.Requests, cfg.Limit.Window))
	{
		// 登录 / 注册（无需登录态）
		console.POST("/session", h.Auth.Login)
		console.DELETE("/session", h.Auth.Logout)
		console.POST("/register", h.Auth.Register)

		// 全局提示
		console.GET("/alert", h.Alert.Current)
		console.DELETE("/alert", h.Alert.Dismiss)

		// 需要登录态的路由
		authorized := console.Group("")
		authorized.Use(middleware.SessionAuth(d.Auth, d.Inspector))
		{
			authorized.GET("/profile", h.Auth.Profile)

			// 首页
			authorized.GET("/dashboard/stats", h.Dashboard.Stats)

			// 部门管理
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Org.List(model.OrgDepartment))
				departments.POST("", h.Org.Create(model.OrgDepartment))
				departments.POST("/views/:view/:id/toggle", h.Org.Toggle(model.OrgDepartment))
			}

			// 班级管理
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Org.List(model.OrgClass))
				classes.POST("", h.Org.Create(model.OrgClass))
				classes.POST("/views/:view/:id/toggle", h.Org.Toggle(model.OrgClass))
				classes.GET("/:id/qr", h.Org.InviteQR(model.OrgClass))
			}

			// 请假审批
			leaves := authorized.Group("/leaves")
			{
				leaves.GET("/pending", h.Leave.ListPending)
				leaves.POST("/audit", h.Leave.Audit)
			}

			// 打卡管理 / 返校签到
			dings := authorized.Group("/dings")
			{
				dings.GET("", h.Ding.List)
				dings.POST("", h.Ding.Create)
				dings.POST("/views/:view/:id/toggle", h.Ding.ToggleRecords)
				dings.GET("/calendar.ics", h.Ding.Calendar)
			}

			// 发送通知
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("/targets", h.Notification.Targets)
				notifications.POST("/select-all", h.Notification.SelectAll)
				notifications.POST("/targets/:key/toggle", h.Notification.ToggleTarget)
				notifications.POST("", h.Notification.Send)
			}

			// 数据导出
			export := authorized.Group("/export")
			{
				export.POST("/query", h.Export.Query)
				export.POST("/remote", h.Export.Remote)
				export.POST("/xlsx", h.Export.Local)
			}
		}
	}

	return r
}
