package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"budget/config"
	"budget/identity"
	"budget/ledger"
	"budget/logger"
	"budget/middleware"
	"budget/router"
	"budget/service"
	"budget/storage"

	"go.uber.org/zap"
)

// @title 预算记账 API
// @version 1.0
// @description 收支记账、仪表盘汇总、用户认证与天气/价格小组件
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("预算记账 v1.0.0")
		return
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if _, err := logger.Init(cfg.Log.Env); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
	}

	logger.Info("config loaded", zap.Strings("sources", cfg.Sources))
	for _, line := range cfg.Summary() {
		logger.Info(line)
	}

	backend, err := storage.Open(cfg, logger.L())
	if err != nil {
		logger.Fatal("open storage", zap.Error(err))
	}
	defer backend.Close()

	deps := router.Deps{
		Ledger: ledger.NewService(backend.Ledger, ledger.Options{
			Categories:       cfg.Ledger.Categories,
			StrictCategories: cfg.Ledger.StrictCategories,
		}, ledger.WithLogger(logger.L().Named("ledger"))),
		Logger: logger.L(),
	}

	if cfg.App.MultiUser {
		middleware.InitJWT(cfg)
		gateCfg := identity.Config{
			AllowForgotPassword: cfg.Auth.AllowForgotPassword,
			Logger:              logger.L().Named("identity"),
		}
		if cfg.Email.Enabled {
			gateCfg.Notifier = service.NewEmailService(&cfg.Email)
		}
		deps.Gate = identity.NewGate(backend.Users, identity.NewBcryptHasher(0), gateCfg)
	}

	if cfg.Widgets.Enabled {
		var cache service.Cache
		if len(cfg.Widgets.MemcacheHosts) > 0 {
			mc, err := service.NewMemcacheCache(cfg.Widgets.MemcacheHosts...)
			if err != nil {
				logger.Warn("memcached unavailable, widgets are not cached", zap.Error(err))
			} else {
				cache = mc
			}
		}
		deps.Widgets = service.NewWidgetService(&cfg.Widgets, cache, logger.L().Named("widgets"))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.SetupRouter(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started",
			zap.String("addr", cfg.Server.Port),
			zap.String("swagger", "http://localhost"+cfg.Server.Port+"/swagger/index.html"),
			zap.String("api", "http://localhost"+cfg.Server.Port+"/api/v1/"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
