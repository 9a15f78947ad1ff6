// Package main is the entry point for the dumpyara Telegram bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/dumpyara/dumpyarabot/internal/bot"
	"gitlab.com/dumpyara/dumpyarabot/internal/config"
	"gitlab.com/dumpyara/dumpyarabot/internal/database"
	"gitlab.com/dumpyara/dumpyarabot/internal/jenkins"
	"gitlab.com/dumpyara/dumpyarabot/internal/logger"
	"gitlab.com/dumpyara/dumpyarabot/internal/repository"
	"gitlab.com/dumpyara/dumpyarabot/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("dumpyarabot %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.InitHashSalt()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Exporter:       cfg.OTelExporter,
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to set up telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	var users bot.UserRecorder
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := database.RunMigrations(ctx, pool); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		users = repository.NewUserRepository(pool)
		logger.Log.Info().Msg("Database initialized successfully")
	} else {
		logger.Log.Info().Msg("DATABASE_URL not set, user tracking disabled")
	}

	builds := jenkins.New(cfg.JenkinsURL, cfg.JenkinsUserName, cfg.JenkinsUserToken, cfg.JenkinsTimeout)

	telegramBot, err := bot.New(ctx, cfg, users, builds)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create bot")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	telegramBot.Start(ctx)
}
