package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"matchoracle/internal/client/directory"
	"matchoracle/internal/client/schemaregistry"
	"matchoracle/internal/config"
	cronrunner "matchoracle/internal/cron"
	"matchoracle/internal/db"
	"matchoracle/internal/handler"
	"matchoracle/internal/logger"
	"matchoracle/internal/notify"
	"matchoracle/internal/oracle"
	gormrepository "matchoracle/internal/repository/gorm"
)

func main() {
	cfgPath := os.Getenv("ORACLE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ORACLE_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	directoryHTTP := &http.Client{Timeout: cfg.Directory.Timeout}
	directoryClient := directory.NewClient(directoryHTTP, cfg.Directory.BaseURL)
	schemaHTTP := &http.Client{Timeout: cfg.SchemaRegistry.Timeout}
	schemaClient := schemaregistry.NewClient(schemaHTTP, cfg.SchemaRegistry.BaseURL)

	store := gormrepository.New(dbConn.Gorm)
	hub := notify.NewHub(logger)

	if len(cfg.Oracle.ResolverAccounts) == 0 {
		logger.Warn("no resolver accounts configured; disputes cannot be resolved")
	}

	engine := &oracle.Engine{
		Store:     store,
		Directory: directoryClient,
		Schemas:   schemaClient,
		Auth:      oracle.NewAccountAuthorizer(cfg.Oracle.ResolverAccounts),
		Events:    hub,
		Logger:    logger,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(handler.AccountMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	resultHandler := &handler.ResultHandler{Engine: engine}
	resultHandler.Register(router)
	disputeHandler := &handler.DisputeHandler{Engine: engine}
	disputeHandler.Register(router)
	rewardHandler := &handler.RewardHandler{Engine: engine}
	rewardHandler.Register(router)
	eventHandler := &handler.EventHandler{Hub: hub}
	eventHandler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := &notify.Dispatcher{
		Store:  store,
		Config: cfg.Notify,
		Logger: logger,
	}

	cronRunner := cronrunner.New(logger, ctx)
	_, err = cronRunner.Add(cfg.Notify.DispatchSpec, func(ctx context.Context) {
		n, err := dispatcher.DispatchPending(ctx)
		if err != nil {
			logger.Warn("notification dispatch failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("notifications dispatched", zap.Int("count", n))
		}
	})
	if err != nil {
		logger.Warn("cron register notification dispatch failed", zap.Error(err))
	}
	_, err = cronRunner.Add(cfg.Notify.PruneSpec, func(ctx context.Context) {
		n, err := dispatcher.PruneDelivered(ctx)
		if err != nil {
			logger.Warn("notification prune failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("delivered notifications pruned", zap.Int64("count", n))
		}
	})
	if err != nil {
		logger.Warn("cron register notification prune failed", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Account")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
