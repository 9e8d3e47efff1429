package main

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/flusslauf/pegelmonitor/internal/config"
	"github.com/flusslauf/pegelmonitor/internal/integration"
	"github.com/flusslauf/pegelmonitor/internal/log"
	"github.com/flusslauf/pegelmonitor/internal/observability"
	"github.com/flusslauf/pegelmonitor/internal/repository"
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
	log.Info("Starting Pegel-Monitor scraper...")

	repo, err := repository.NewSQLiteRiverRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}
	defer repo.Close()

	metrics := observability.NewMetrics()
	scraper := integration.NewScraper(cfg.FetchTimeout, cfg.Location, nil, metrics)
	useCase := usecases.NewRiverUseCase(cfg, scraper, repo, metrics, nil)

	// Run once on startup, then on the configured schedule.
	if err := useCase.RefreshAndArchive(context.Background()); err != nil {
		log.Errorf("Initial data refresh failed: %v", err)
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.CronSpec, func() {
		if err := useCase.RefreshAndArchive(context.Background()); err != nil {
			log.Errorf("Scheduled data refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to set up cron job: %v", err)
	}

	log.Infof("Scraper scheduled with cron spec %q", cfg.CronSpec)
	c.Start()

	// Keep the program running.
	select {}
}
