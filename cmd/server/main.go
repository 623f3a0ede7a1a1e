package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"unihub-board/config"
	"unihub-board/internal/alert"
	"unihub-board/internal/api/handler"
	"unihub-board/internal/api/router"
	"unihub-board/internal/client"
	"unihub-board/internal/service"
	"unihub-board/internal/session"
	"unihub-board/pkg/jwt"
	applogger "unihub-board/pkg/logger"
	"unihub-board/pkg/metrics"
	"unihub-board/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，默认查找 ./config/config.yaml")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("控制台启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("session_store", cfg.Session.Store),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接 Redis（可选：未开启或连接失败时降级为进程内实现）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			if cfg.Session.Store == "redis" {
				logger.Fatal("Redis 连接失败，无法使用 redis 登录态存储", zap.Error(err))
			}
			logger.Warn("Redis 连接失败，防重复提交与限流将使用进程内实现", zap.Error(err))
			rdb = nil
		}
	}

	// 4. 登录态存储
	var store session.Store
	switch cfg.Session.Store {
	case "redis":
		store = session.NewRedisStore(rdb)
	case "memory":
		store = session.NewMemoryStore()
	default:
		store = session.NewFileStore(cfg.Session.FilePath)
	}

	// 5. 防重复提交
	var guard service.Guard
	if rdb != nil {
		guard = service.NewRedisGuard(rdb, cfg.Session.InFlightTTL)
	} else {
		guard = service.NewMemoryGuard()
	}

	// 6. 指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	// 7. 依赖注入: Client → Service → Handler
	upstream := client.New(&cfg.Upstream, logger, client.WithMetrics(rec))
	alerts := alert.NewCenter(cfg.Alert.DismissAfter)
	inspector := jwt.NewInspector()

	svc := service.NewService(service.Deps{
		Config:    cfg,
		Upstream:  upstream,
		Store:     store,
		Guard:     guard,
		Alerts:    alerts,
		Inspector: inspector,
		Metrics:   rec,
		Logger:    logger,
	})
	h := handler.NewHandler(svc, alerts)

	// 8. 初始化路由
	engine := router.Setup(router.Deps{
		Config:    cfg,
		Handler:   h,
		Auth:      svc.Auth,
		Inspector: inspector,
		Redis:     rdb,
		Gatherer:  reg,
		Logger:    logger,
	})

	// 9. 启动 HTTP 服务器（优雅关闭）
	// 导出全量数据时需要逐个拉取打卡记录，写超时放宽
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	alerts.Hide()

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
