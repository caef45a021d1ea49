package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasknotes/backend/broker"
	"tasknotes/backend/config"
	"tasknotes/backend/database"
	"tasknotes/backend/logger"
	"tasknotes/backend/routes"
	"tasknotes/backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync(zlog)
	zap.ReplaceGlobals(zlog)

	if err := run(cfg, zlog); err != nil {
		zlog.Error("server stopped with error", zap.Error(err))
		logger.Sync(zlog)
		os.Exit(1)
	}
}

func run(cfg config.Config, zlog *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	zlog.Info("starting server",
		zap.String("env", cfg.AppEnv),
		zap.String("port", cfg.AppPort),
		zap.Strings("cors_origins", cfg.Origins()),
	)

	authService, err := services.NewAuthService(services.AuthConfig{
		Secret:        cfg.JWTSecret,
		SigningMethod: cfg.JWTSigningMethod,
		Expiration:    cfg.JWTExpiration,
		BcryptCost:    cfg.BcryptCost,
	}, services.NewUserService())
	if err != nil {
		return err
	}

	db, err := database.Setup(cfg, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zlog.Warn("failed to close database", zap.Error(err))
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.Ping(pingCtx)
	cancel()
	if err != nil {
		return err
	}
	if cfg.DBDriver == "sqlite" {
		zlog.Info("database connected", zap.String("driver", cfg.DBDriver), zap.String("path", cfg.SQLitePath))
	} else {
		zlog.Info("database connected", zap.String("driver", cfg.DBDriver), zap.String("dsn", cfg.MaskedDSN()))
	}

	eventBroker, err := broker.New(cfg.NATSURL, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := eventBroker.Close(); err != nil {
			zlog.Warn("failed to close broker", zap.Error(err))
		}
	}()

	router := routes.SetupRouter(
		routes.RouterConfig{
			AllowedOrigins: cfg.Origins(),
			RequestTimeout: cfg.RequestTimeout,
		},
		zlog,
		db,
		authService,
		services.NewNoteService(eventBroker, zlog),
		services.NewWebSocketService(eventBroker, cfg.Origins(), zlog),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("API server is running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		zlog.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	zlog.Info("server stopped")
	return nil
}
