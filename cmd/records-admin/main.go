package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/repository"
	"github.com/noah-isme/sma-records/internal/service"
	"github.com/noah-isme/sma-records/pkg/config"
	"github.com/noah-isme/sma-records/pkg/database"
	"github.com/noah-isme/sma-records/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.New(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open record store", zap.Error(err))
	}
	defer db.Close()

	gateway := repository.NewGateway(db, cfg.Database, repository.SeedOptions{
		AdminPassword: cfg.Auth.SeedAdminPassword,
		BcryptCost:    cfg.Auth.BcryptCost,
	}, logr)
	if err := gateway.Ping(context.Background()); err != nil {
		logr.Warn("record store unreachable", zap.Error(err))
	}

	users := repository.NewUserRepository(db)
	cli := commandLine{
		store: gateway,
		auth: service.NewAuthService(users, nil, logr, service.AuthConfig{
			OfflineFallback: cfg.Auth.OfflineFallback,
			SessionSecret:   cfg.Session.Secret,
			SessionTTL:      cfg.Session.TTL,
			Issuer:          cfg.Session.Issuer,
		}),
		users: service.NewUserService(users, service.NewValidator(), logr, cfg.Auth.BcryptCost),
		out:   os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logr.Error("command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
