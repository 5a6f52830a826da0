package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"miracars-bot/internal/bot"
	"miracars-bot/internal/config"
	"miracars-bot/internal/settings"
	"miracars-bot/internal/storage"
	"miracars-bot/pkg/logger"
	"miracars-bot/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	redisClient := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	settingsStore := settings.New(redisClient)
	dialogState := bot.NewStateStorage(redisClient, cfg.DialogTTL)

	pgStorage, err := storage.NewPostgresStorage(ctx, storage.Config{
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		ReportsDir:      cfg.ReportsDir,
	}, redisClient, zapLogger)
	if err != nil {
		return fmt.Errorf("init postgres storage: %w", err)
	}
	defer pgStorage.Close()

	if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	tgBot, err := bot.New(
		cfg.TelegramToken,
		dialogState,
		settingsStore,
		pgStorage,
		zapLogger,
		cfg,
	)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Error("Bot stopped with error", zap.Error(err))
		return err
	}

	zapLogger.Info("Bot shutdown gracefully")
	return nil
}
