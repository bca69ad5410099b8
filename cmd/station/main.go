// cmd/station/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soluna-lab/soluna-observer/internal/api"
	"github.com/soluna-lab/soluna-observer/internal/app"
	"github.com/soluna-lab/soluna-observer/internal/config"
)

func main() {
	// 1. 加载基础配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	logger, err := newLogger(cfg.DebugMode)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Sync()

	logger.Info("启动 Soluna 观察站服务",
		zap.String("port", cfg.Port),
		zap.Bool("debug", cfg.DebugMode))

	// 3. 初始化所有服务（按依赖顺序）
	if err := app.InitServices(cfg, logger); err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}

	// 4. 设置路由（只获取服务，不创建）
	router, err := api.SetupRouter(cfg, logger)
	if err != nil {
		logger.Fatal("设置路由失败", zap.Error(err))
	}

	// 5. 启动服务器并等待关闭信号
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器强制关闭", zap.Error(err))
	}

	app.GetApp().Shutdown()
	logger.Info("服务器优雅关闭完成")
}

// newLogger 按运行模式构建zap日志器
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
