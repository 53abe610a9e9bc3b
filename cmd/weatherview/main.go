package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nazarious-ucu/weather-viewer/internal/app"
	"github.com/Nazarious-ucu/weather-viewer/internal/config"
	"github.com/Nazarious-ucu/weather-viewer/internal/services/metrics"
	"github.com/Nazarious-ucu/weather-viewer/pkg/logger"
)

const serviceName = "weather_viewer"

func main() {
	cfg, err := config.Load(os.Getenv("WEATHER_VIEW_CONFIG"))
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.LogsPath, serviceName)
	if err != nil {
		log.Panicf("failed to initialize logger: %v", err)
	}

	m := metrics.NewMetrics(serviceName)

	application := app.New(*cfg, l, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		log.Panic(err)
	}
}
