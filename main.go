package main

import (
	"context"
	"flag"
	"log"

	"opening-hours/config"
	"opening-hours/di"
	"opening-hours/logger"
	"opening-hours/metrics"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[MAIN] Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("[MAIN] Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("[MAIN] Failed to build container", zap.Error(err))
	}
	defer container.Close()

	zapLogger.Info("[MAIN] Starting open/closed sign")
	container.OpenClosedSign.Start(ctx)

	if err := container.OpeningHoursHttpServer.Start(ctx); err != nil {
		zapLogger.Error("[MAIN] Server stopped with error", zap.Error(err))
	}
	zapLogger.Info("[MAIN] Server stopped")
}
