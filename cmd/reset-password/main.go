package main

import (
	"context"
	"errors"
	"os"
	"time"

	"go-retail-pos/internal/config"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/database"
	"go-retail-pos/pkg/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reset-password sets a new password for one user and ends their sessions.
func main() {
	email := pflag.StringP("email", "e", "", "email of the user to reset (default: the seeded platform admin)")
	password := pflag.StringP("password", "p", "", "new password (default: the seed admin password)")
	pflag.Parse()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if *email == "" {
		*email = cfg.Seed.AdminEmail
	}
	if *password == "" {
		*password = cfg.Seed.AdminPassword
	}
	if len(*password) < 6 {
		log.Error("password must be at least 6 characters")
		os.Exit(2)
	}

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
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	store := repository.NewStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Find user
	user, err := store.Users.FindByEmail(ctx, *email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatal("user not found", zap.String("email", *email))
	}
	if err != nil {
		log.Fatal("find user failed", zap.Error(err))
	}

	// 4. Hash new password and drop the current session
	if err := user.SetPassword(*password); err != nil {
		log.Fatal("hash password failed", zap.Error(err))
	}
	user.TokenVersion = ""
	user.UpdatedBy = "reset-password"
	if err := store.Users.Update(ctx, user); err != nil {
		log.Fatal("update user failed", zap.Error(err))
	}

	log.Info("password reset", zap.String("email", user.Email))
}
