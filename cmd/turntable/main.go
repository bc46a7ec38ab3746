package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hazadus/turntable/internal/config"
	"github.com/hazadus/turntable/internal/logger"
)

func main() {
	// .env из текущей директории дополняет окружение
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApplication(cfg, log)
	if err := app.createRootCommand(ctx).ExecuteContext(ctx); err != nil {
		log.Error("Команда завершилась с ошибкой", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
