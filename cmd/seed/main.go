package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"user_management/internal/config"
	"user_management/internal/logger"
	"user_management/internal/repository"
	"user_management/internal/repository/db"
	"user_management/internal/service"
)

const seedTimeout = 30 * time.Second

// seed upserts the configured ADMIN and USER accounts. Existing accounts
// keep their name and password and only get their role reset.
func main() {
	if err := run(); err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Errorw("seed failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	path, err := config.PathFromArgs("seed", os.Args[1:])
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	conn, dialect, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = conn.Close() }()

	services := service.NewService(repository.NewRepository(conn, dialect), service.AuthConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.TokenTTL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	accounts := cfg.Seed.Accounts()
	for _, a := range accounts {
		log.Infow("seeding account", "email", a.Email, "role", a.Role)
	}
	// The feed in this process has no subscribers, so seed events are not
	// delivered to /ws/users clients of a running API.
	if err := services.Users.Seed(ctx, accounts); err != nil {
		return err
	}
	log.Infow("seed finished", "accounts", len(accounts))
	return nil
}
