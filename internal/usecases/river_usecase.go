// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/flusslauf/pegelmonitor/internal/analysis"
	"github.com/flusslauf/pegelmonitor/internal/config"
	"github.com/flusslauf/pegelmonitor/internal/entities"
	"github.com/flusslauf/pegelmonitor/internal/integration"
	"github.com/flusslauf/pegelmonitor/internal/log"
	"github.com/flusslauf/pegelmonitor/internal/observability"
	"github.com/flusslauf/pegelmonitor/internal/repository"
)

// RiverUseCase orchestrates fetching, normalization, and assembly of
// the per-water-body records
type RiverUseCase struct {
	scraper *integration.Scraper
	cfg     *config.Config
	clock   clockwork.Clock
	metrics *observability.Metrics
	repo    repository.RiverRepository // optional readings archive

	cacheMu  sync.RWMutex
	cached   *entities.RiversData
	cachedAt time.Time
	cacheTTL time.Duration
}

// NewRiverUseCase creates a new river use case. repo and metrics may be
// nil; clock may be nil for real time.
func NewRiverUseCase(cfg *config.Config, scraper *integration.Scraper, repo repository.RiverRepository, metrics *observability.Metrics, clock clockwork.Clock) *RiverUseCase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RiverUseCase{
		scraper:  scraper,
		cfg:      cfg,
		clock:    clock,
		metrics:  metrics,
		repo:     repo,
		cacheTTL: cfg.CacheTTL,
	}
}

// FetchAll runs one full fetch cycle over every configured water body
// in parallel and assembles the top-level result. A single water body
// failing completely yields an empty shell for that entry; the batch
// itself only reports an error when something escapes every inner
// guard.
func (uc *RiverUseCase) FetchAll(ctx context.Context) (result entities.RiversData) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Fetch cycle failed unexpectedly: %v", r)
			result = entities.RiversData{
				LastUpdated: uc.clock.Now(),
				Error:       fmt.Sprintf("unexpected failure: %v", r),
			}
		}
	}()

	start := uc.clock.Now()
	bodies := uc.cfg.WaterBodies
	rivers := make([]entities.RiverData, len(bodies))

	var wg sync.WaitGroup
	for i, wb := range bodies {
		wg.Add(1)
		go func(i int, wb config.WaterBody) {
			defer wg.Done()
			rivers[i] = uc.fetchWaterBody(ctx, wb)
		}(i, wb)
	}
	wg.Wait()

	if uc.metrics != nil {
		uc.metrics.BatchDuration.Observe(uc.clock.Since(start).Seconds())
	}
	log.Infof("Fetch cycle finished for %d water bodies in %s", len(bodies), uc.clock.Since(start))

	return entities.RiversData{Rivers: rivers, LastUpdated: uc.clock.Now()}
}

// fetchWaterBody assembles one RiverData record. Lakes run the
// temperature fetch only; rivers run level, flow, and temperature
// concurrently and join before assembly. Every reading is independently
// guarded, so a failed fetch degrades that reading and nothing else.
func (uc *RiverUseCase) fetchWaterBody(ctx context.Context, wb config.WaterBody) (rd entities.RiverData) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Recovered while fetching %s: %v", wb.Name, r)
			rd = emptyShell(wb)
		}
	}()
	rd = emptyShell(wb)

	if wb.IsLake {
		if wb.TemperatureURL != "" {
			points, outcome := uc.scraper.FetchLakeTemperature(ctx, wb.TemperatureURL, uc.cfg.ReferenceYear)
			if outcome == integration.OutcomeOK {
				rd.TemperatureHistory = points
			}
		}
	} else {
		var wg sync.WaitGroup
		var levels []entities.LevelPoint
		var flows []entities.FlowPoint
		var temps []entities.TemperaturePoint

		if wb.LevelURL != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if pts, outcome := uc.scraper.FetchLevelSeries(ctx, wb.LevelURL); outcome == integration.OutcomeOK {
					levels = pts
				}
			}()
		}
		if wb.FlowURL != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if pts, outcome := uc.scraper.FetchFlowSeries(ctx, wb.FlowURL); outcome == integration.OutcomeOK {
					flows = pts
				}
			}()
		}
		if wb.TemperatureURL != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if pts, outcome := uc.scraper.FetchTemperatureSeries(ctx, wb.TemperatureURL); outcome == integration.OutcomeOK {
					temps = pts
				}
			}()
		}
		wg.Wait()

		rd.LevelHistory = levels
		rd.FlowHistory = flows
		rd.TemperatureHistory = temps
	}

	uc.deriveStatistics(&rd, wb)
	return rd
}

// deriveStatistics fills current readings, day-ago comparison points,
// day-over-day changes, and the alert level
func (uc *RiverUseCase) deriveStatistics(rd *entities.RiverData, wb config.WaterBody) {
	if len(rd.LevelHistory) > 0 {
		head := rd.LevelHistory[0]
		rd.CurrentLevel = &head
		rd.DayAgoLevel = closestLevel(rd.LevelHistory, head.Timestamp.Add(-24*time.Hour))
		if rd.DayAgoLevel != nil {
			dc := analysis.DailyChange(head.Level, rd.DayAgoLevel.Level)
			rd.LevelChange = &dc
		}
	}
	if len(rd.FlowHistory) > 0 {
		head := rd.FlowHistory[0]
		rd.CurrentFlow = &head
		rd.DayAgoFlow = closestFlow(rd.FlowHistory, head.Timestamp.Add(-24*time.Hour))
		if rd.DayAgoFlow != nil {
			dc := analysis.DailyChange(head.Flow, rd.DayAgoFlow.Flow)
			rd.FlowChange = &dc
		}
	}
	if len(rd.TemperatureHistory) > 0 {
		head := rd.TemperatureHistory[0]
		rd.CurrentTemperature = &head
		rd.DayAgoTemperature = closestTemperature(rd.TemperatureHistory, head.Timestamp.Add(-24*time.Hour))
		if rd.DayAgoTemperature != nil {
			dc := analysis.DailyChange(head.Temperature, rd.DayAgoTemperature.Temperature)
			rd.TemperatureChange = &dc
		}
	}

	if rd.CurrentFlow != nil {
		rd.AlertLevel = analysis.EvaluateAlertLevel(rd.CurrentFlow.Flow, wb.Thresholds)
	}
}

// CachedRiversData serves the last fetch cycle while it is fresh and
// runs a new one otherwise
func (uc *RiverUseCase) CachedRiversData(ctx context.Context) entities.RiversData {
	uc.cacheMu.RLock()
	if uc.cached != nil && uc.clock.Since(uc.cachedAt) < uc.cacheTTL {
		data := *uc.cached
		uc.cacheMu.RUnlock()
		log.Debugf("Serving cached data from %s", uc.cachedAt.Format(time.RFC3339))
		return data
	}
	uc.cacheMu.RUnlock()

	data := uc.FetchAll(ctx)

	uc.cacheMu.Lock()
	uc.cached = &data
	uc.cachedAt = uc.clock.Now()
	uc.cacheMu.Unlock()
	return data
}

// RefreshAndArchive runs a fetch cycle and stores the normalized
// readings in the archive. Used by the scheduled scrapper; a failed
// cycle is retried implicitly on the next tick.
func (uc *RiverUseCase) RefreshAndArchive(ctx context.Context) error {
	data := uc.FetchAll(ctx)
	if data.Error != "" {
		return fmt.Errorf("fetch cycle failed: %s", data.Error)
	}
	if uc.repo == nil {
		return nil
	}
	if err := uc.repo.SaveReadings(data); err != nil {
		return fmt.Errorf("failed to archive readings: %w", err)
	}
	return nil
}

func emptyShell(wb config.WaterBody) entities.RiverData {
	return entities.RiverData{
		Name:           wb.Name,
		Location:       wb.Location,
		LevelURL:       wb.LevelURL,
		FlowURL:        wb.FlowURL,
		TemperatureURL: wb.TemperatureURL,
		WebcamURL:      wb.WebcamURL,
		Thresholds:     wb.Thresholds,
		AlertLevel:     entities.AlertNormal,
		IsLake:         wb.IsLake,
	}
}

// closestLevel returns the history point closest in time to target
func closestLevel(history []entities.LevelPoint, target time.Time) *entities.LevelPoint {
	best := -1
	var bestDiff time.Duration
	for i, p := range history {
		diff := absDuration(p.Timestamp.Sub(target))
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return nil
	}
	p := history[best]
	return &p
}

func closestFlow(history []entities.FlowPoint, target time.Time) *entities.FlowPoint {
	best := -1
	var bestDiff time.Duration
	for i, p := range history {
		diff := absDuration(p.Timestamp.Sub(target))
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return nil
	}
	p := history[best]
	return &p
}

func closestTemperature(history []entities.TemperaturePoint, target time.Time) *entities.TemperaturePoint {
	best := -1
	var bestDiff time.Duration
	for i, p := range history {
		diff := absDuration(p.Timestamp.Sub(target))
		if best < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		return nil
	}
	p := history[best]
	return &p
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
