package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/flusslauf/pegelmonitor/internal/api"
	"github.com/flusslauf/pegelmonitor/internal/config"
	"github.com/flusslauf/pegelmonitor/internal/integration"
	"github.com/flusslauf/pegelmonitor/internal/log"
	"github.com/flusslauf/pegelmonitor/internal/observability"
	"github.com/flusslauf/pegelmonitor/internal/usecases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := log.Init(cfg.Debug); err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Starting Pegel-Monitor server...")

	metrics := observability.NewMetrics()
	scraper := integration.NewScraper(cfg.FetchTimeout, cfg.Location, nil, metrics)
	useCase := usecases.NewRiverUseCase(cfg, scraper, nil, metrics, nil)

	srv := api.NewServer(cfg.HTTPAddr, useCase)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
	log.Info("Server stopped")
}
