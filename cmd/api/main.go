package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-retail-pos/internal/config"
	"go-retail-pos/internal/metrics"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/server"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/database"
	"go-retail-pos/pkg/jwt"
	"go-retail-pos/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. Load config (.env + environment)
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// 2. Setup Database
	db, err := database.Connect(database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Name:            cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(model.All()...); err != nil {
			log.Fatal("auto migrate failed", zap.Error(err))
		}
	}

	store := repository.NewStore(db)

	// 3. Seed default privileges, roles, and the platform admin
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	seeded, err := repository.Seed(seedCtx, store, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	cancelSeed()
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	if seeded.AdminCreated {
		log.Info("platform admin created", zap.String("email", seeded.AdminEmail))
	}

	// 4. Setup WebSocket Hub
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	app := server.New(server.Options{
		Config:  cfg,
		Store:   store,
		Tokens:  jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer),
		Hub:     hub,
		Metrics: m,
		Log:     log,
	})

	// 5. Graceful Shutdown
	go func() {
		log.Info("server listening", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Panic("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server exited")
}
