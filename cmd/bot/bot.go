package main

import (
	"github.com/flusslauf/pegelmonitor/internal/api"
	"github.com/flusslauf/pegelmonitor/internal/config"
	"github.com/flusslauf/pegelmonitor/internal/integration"
	"github.com/flusslauf/pegelmonitor/internal/log"
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
	log.Info("Starting Pegel-Monitor bot...")

	if cfg.BotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	scraper := integration.NewScraper(cfg.FetchTimeout, cfg.Location, nil, nil)
	useCase := usecases.NewRiverUseCase(cfg, scraper, nil, nil, nil)

	bot, err := api.NewTelegramBot(cfg.BotToken, useCase)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	bot.Start()
}
