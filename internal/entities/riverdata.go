// Package entities contains the core domain objects for the pegel-monitor application
package entities

import (
	"time"
)

// ReadingKind identifies one of the three measured quantities
type ReadingKind string

const (
	KindLevel       ReadingKind = "level"       // water level in cm
	KindFlow        ReadingKind = "flow"        // discharge in m³/s
	KindTemperature ReadingKind = "temperature" // water temperature in °C
)

// LevelPoint is a single water level measurement
type LevelPoint struct {
	Date      string    `json:"date"` // display form, e.g. "18.04.2025 08:00"
	Timestamp time.Time `json:"timestamp"`
	Level     float64   `json:"level"`
	Hour      int       `json:"hour"` // hour-of-day of the measurement
}

// TemperaturePoint is a single water temperature measurement
type TemperaturePoint struct {
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Situation   string    `json:"situation,omitempty"` // free-text label some sources attach
}

// FlowPoint is a single discharge measurement
type FlowPoint struct {
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
	Flow      float64   `json:"flow"`
}

// RiverData is the canonical per-water-body record assembled on every
// fetch cycle. Histories are ordered newest-first and the current
// reading, when present, is always the head of its history. Lakes carry
// temperature only.
type RiverData struct {
	Name     string `json:"name"`
	Location string `json:"location"`

	CurrentLevel       *LevelPoint       `json:"currentLevel,omitempty"`
	CurrentTemperature *TemperaturePoint `json:"currentTemperature,omitempty"`
	CurrentFlow        *FlowPoint        `json:"currentFlow,omitempty"`

	LevelHistory       []LevelPoint       `json:"levelHistory,omitempty"`
	TemperatureHistory []TemperaturePoint `json:"temperatureHistory,omitempty"`
	FlowHistory        []FlowPoint        `json:"flowHistory,omitempty"`

	// Closest point from roughly 24h before the newest reading, per kind.
	DayAgoLevel       *LevelPoint       `json:"dayAgoLevel,omitempty"`
	DayAgoTemperature *TemperaturePoint `json:"dayAgoTemperature,omitempty"`
	DayAgoFlow        *FlowPoint        `json:"dayAgoFlow,omitempty"`

	LevelChange       *DailyChange `json:"levelChange,omitempty"`
	TemperatureChange *DailyChange `json:"temperatureChange,omitempty"`
	FlowChange        *DailyChange `json:"flowChange,omitempty"`

	LevelURL       string `json:"levelUrl,omitempty"`
	FlowURL        string `json:"flowUrl,omitempty"`
	TemperatureURL string `json:"temperatureUrl,omitempty"`
	WebcamURL      string `json:"webcamUrl,omitempty"`

	Thresholds *FlowThresholds `json:"thresholds,omitempty"`
	AlertLevel AlertLevel      `json:"alertLevel"`
	IsLake     bool            `json:"isLake"`
}

// RiversData is the top-level result of one fetch cycle
type RiversData struct {
	Rivers      []RiverData `json:"rivers"`
	LastUpdated time.Time   `json:"lastUpdated"`
	Error       string      `json:"error,omitempty"` // set only when the whole batch failed
}
