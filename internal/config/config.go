// Package config holds the static water-body catalog and runtime settings
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/flusslauf/pegelmonitor/internal/entities"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultFetchTimeout = 20 * time.Second
	defaultCacheTTL     = 5 * time.Minute
	defaultCronSpec     = "*/15 * * * *"
	defaultTimezone     = "Europe/Berlin"
)

// WaterBody describes one configured river or lake. URLs are optional;
// a missing URL means that reading is not fetched. Lakes only ever use
// the temperature URL.
type WaterBody struct {
	Name           string
	Location       string
	LevelURL       string
	FlowURL        string
	TemperatureURL string
	IsLake         bool
	WebcamURL      string
	Thresholds     *entities.FlowThresholds
}

// Config holds runtime configuration, populated from environment
// variables (optionally a .env file) with defaults.
type Config struct {
	HTTPAddr     string
	FetchTimeout time.Duration
	CacheTTL     time.Duration
	CronSpec     string
	DBPath       string
	BotToken     string
	Debug        bool

	// Timezone of the upstream pages; all parsed dates live here.
	Location *time.Location

	// Year used to anchor day-of-year offsets in the lake chart data.
	// Zero means "year of the current fetch".
	ReferenceYear int

	WaterBodies []WaterBody
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		HTTPAddr:     envOrDefault("HTTP_ADDR", defaultHTTPAddr),
		FetchTimeout: defaultFetchTimeout,
		CacheTTL:     defaultCacheTTL,
		CronSpec:     envOrDefault("SCRAPE_CRON", defaultCronSpec),
		DBPath:       os.Getenv("DB_PATH"),
		BotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		Debug:        isTrue(os.Getenv("DEBUG")),
		WaterBodies:  DefaultWaterBodies(),
	}

	if v := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	if v := strings.TrimSpace(os.Getenv("REFERENCE_YEAR")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REFERENCE_YEAR: %w", err)
		}
		cfg.ReferenceYear = year
	}

	tz := envOrDefault("SOURCE_TIMEZONE", defaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// DefaultWaterBodies returns the built-in catalog of monitored rivers
// and lakes.
func DefaultWaterBodies() []WaterBody {
	return []WaterBody{
		{
			Name:           "Isar",
			Location:       "München",
			LevelURL:       "https://www.gkd.bayern.de/de/fluesse/wasserstand/isar/muenchen-16005701/messwerte",
			FlowURL:        "https://www.gkd.bayern.de/de/fluesse/abfluss/isar/muenchen-16005701/messwerte",
			TemperatureURL: "https://www.gkd.bayern.de/de/fluesse/wassertemperatur/isar/muenchen-16005701/messwerte",
			WebcamURL:      "https://www.foto-webcam.eu/webcam/muenchen",
			Thresholds: &entities.FlowThresholds{
				Green:  entities.Band{{Max: f(110)}},
				Yellow: entities.Band{{Min: f(110), Max: f(240)}},
				Red:    entities.Band{{Min: f(240)}},
			},
		},
		{
			Name:           "Würm",
			Location:       "Pasing",
			LevelURL:       "https://www.gkd.bayern.de/de/fluesse/wasserstand/wuerm/pasing-16171008/messwerte",
			FlowURL:        "https://www.gkd.bayern.de/de/fluesse/abfluss/wuerm/pasing-16171008/messwerte",
			TemperatureURL: "https://www.gkd.bayern.de/de/fluesse/wassertemperatur/wuerm/pasing-16171008/messwerte",
			Thresholds: &entities.FlowThresholds{
				// Both starving and flooding flows are alarming here.
				Green:  entities.Band{{Min: f(2), Max: f(12)}},
				Yellow: entities.Band{{Min: f(1), Max: f(2)}, {Min: f(12), Max: f(20)}},
				Red:    entities.Band{{Max: f(1)}, {Min: f(20)}},
			},
		},
		{
			Name:           "Amper",
			Location:       "Fürstenfeldbruck",
			LevelURL:       "https://www.gkd.bayern.de/de/fluesse/wasserstand/amper/fuerstenfeldbruck-16601304/messwerte",
			FlowURL:        "https://www.gkd.bayern.de/de/fluesse/abfluss/amper/fuerstenfeldbruck-16601304/messwerte",
		},
		{
			Name:           "Starnberger See",
			Location:       "Starnberg",
			TemperatureURL: "https://www.seetemperatur-bayern.de/starnberger-see",
			IsLake:         true,
			WebcamURL:      "https://www.foto-webcam.eu/webcam/starnberg",
		},
	}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func f(v float64) *float64 { return &v }
