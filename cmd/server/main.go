package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Unbornmoral/academic-flow-compass/config"
	"github.com/Unbornmoral/academic-flow-compass/internal/api/handler"
	"github.com/Unbornmoral/academic-flow-compass/internal/api/router"
	"github.com/Unbornmoral/academic-flow-compass/internal/realtime"
	"github.com/Unbornmoral/academic-flow-compass/internal/repository"
	"github.com/Unbornmoral/academic-flow-compass/internal/service"
	"github.com/Unbornmoral/academic-flow-compass/pkg/blob"
	"github.com/Unbornmoral/academic-flow-compass/pkg/database"
	"github.com/Unbornmoral/academic-flow-compass/pkg/jwt"
	"github.com/Unbornmoral/academic-flow-compass/pkg/kvstore"
	applogger "github.com/Unbornmoral/academic-flow-compass/pkg/logger"
	"github.com/Unbornmoral/academic-flow-compass/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
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

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage_mode", cfg.Storage.Mode),
		zap.String("log_level", cfg.Log.Level),
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// 3. 按存储模式装配持久层
	// 模式在启动时一次性选定，整个进程内不混用
	var (
		repo    *repository.Repository
		blobs   blob.Store
		rdb     *redis.Client
		closeDB func()
	)

	switch cfg.Storage.Mode {
	case "remote":
		db, err := database.NewDB(&cfg.Database, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		logger.Info("数据库连接成功")

		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		repo = repository.NewRepository(db)
		closeDB = func() { sqlDB.Close() }

		// 对象存储
		switch cfg.Storage.Blob.Provider {
		case "b2":
			blobs, err = blob.NewB2Store(rootCtx, &cfg.Storage.Blob)
			if err != nil {
				logger.Fatal("对象存储初始化失败", zap.Error(err))
			}
		case "fs":
			blobs, err = blob.NewFSStore(cfg.Storage.Blob.FSDir)
			if err != nil {
				logger.Fatal("本地对象存储初始化失败", zap.Error(err))
			}
		default:
			logger.Fatal("未知的对象存储 provider", zap.String("provider", cfg.Storage.Blob.Provider))
		}

		// Redis（可选：连接失败时降级运行，不中断启动）
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，黑名单/限速/跨实例事件将降级", zap.Error(err))
			rdb = nil
		}

	case "local":
		store, err := kvstore.Open(filepath.Join(cfg.Storage.DataDir, "portal.json"))
		if err != nil {
			logger.Fatal("打开本地存储失败", zap.Error(err))
		}
		repo = repository.NewKVRepository(store)
		logger.Info("本地存储已就绪", zap.String("dir", cfg.Storage.DataDir))

	default:
		logger.Fatal("未知的存储模式", zap.String("mode", cfg.Storage.Mode))
	}

	// 4. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 5. 变更事件：总线 + 内存镜像
	broker := realtime.NewBroker(rdb, cfg.Realtime.Channel, logger)
	broker.Start(rootCtx)

	mirror := realtime.NewMirror(repo, broker, cfg.Realtime.LivenessWindow, logger)
	mirror.Start(rootCtx, cfg.Realtime.CheckInterval)

	// 6. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, repo, jwtMgr, rdb, blobs, broker, mirror, logger)
	h := handler.NewHandler(svc)
	rt := handler.NewRealtimeHandler(broker)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, rt, jwtMgr, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     engine,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		// SSE 长连接，不设 WriteTimeout
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止事件循环与镜像
	rootCancel()

	if closeDB != nil {
		closeDB()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
