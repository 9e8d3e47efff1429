package integration

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/flusslauf/pegelmonitor/internal/entities"
	"github.com/flusslauf/pegelmonitor/internal/log"
	"github.com/flusslauf/pegelmonitor/internal/observability"
)

// Scraper turns upstream HTML pages into normalized reading series.
// One instance serves all configured water bodies.
type Scraper struct {
	fetcher *Fetcher
	loc     *time.Location
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewScraper creates a scraper. loc is the timezone the upstream pages
// publish their dates in; metrics may be nil.
func NewScraper(timeout time.Duration, loc *time.Location, clock clockwork.Clock, metrics *observability.Metrics) *Scraper {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scraper{
		fetcher: NewFetcher(timeout),
		loc:     loc,
		clock:   clock,
		metrics: metrics,
	}
}

// FetchLevelSeries fetches and parses a water level table
func (s *Scraper) FetchLevelSeries(ctx context.Context, url string) ([]entities.LevelPoint, Outcome) {
	body, err := s.fetcher.Get(ctx, url)
	if err != nil {
		log.Warnf("Level fetch failed: %v", err)
		return nil, s.record(entities.KindLevel, OutcomeFailed)
	}
	points, skipped, err := s.parseLevelTable(body)
	if err != nil {
		log.Warnf("Level parse failed for %s: %v", url, err)
		return nil, s.record(entities.KindLevel, OutcomeFailed)
	}
	s.countSkipped(entities.KindLevel, skipped)
	if len(points) == 0 {
		log.Infof("Level page %s yielded no usable rows", url)
		return nil, s.record(entities.KindLevel, OutcomeEmpty)
	}
	log.Infof("Parsed %d level points from %s (%d rows skipped)", len(points), url, skipped)
	return points, s.record(entities.KindLevel, OutcomeOK)
}

// FetchFlowSeries fetches and parses a discharge table
func (s *Scraper) FetchFlowSeries(ctx context.Context, url string) ([]entities.FlowPoint, Outcome) {
	body, err := s.fetcher.Get(ctx, url)
	if err != nil {
		log.Warnf("Flow fetch failed: %v", err)
		return nil, s.record(entities.KindFlow, OutcomeFailed)
	}
	points, skipped, err := s.parseFlowTable(body)
	if err != nil {
		log.Warnf("Flow parse failed for %s: %v", url, err)
		return nil, s.record(entities.KindFlow, OutcomeFailed)
	}
	s.countSkipped(entities.KindFlow, skipped)
	if len(points) == 0 {
		log.Infof("Flow page %s yielded no usable rows", url)
		return nil, s.record(entities.KindFlow, OutcomeEmpty)
	}
	log.Infof("Parsed %d flow points from %s (%d rows skipped)", len(points), url, skipped)
	return points, s.record(entities.KindFlow, OutcomeOK)
}

// FetchTemperatureSeries fetches and parses a water temperature table
func (s *Scraper) FetchTemperatureSeries(ctx context.Context, url string) ([]entities.TemperaturePoint, Outcome) {
	body, err := s.fetcher.Get(ctx, url)
	if err != nil {
		log.Warnf("Temperature fetch failed: %v", err)
		return nil, s.record(entities.KindTemperature, OutcomeFailed)
	}
	points, skipped, err := s.parseTemperatureTable(body)
	if err != nil {
		log.Warnf("Temperature parse failed for %s: %v", url, err)
		return nil, s.record(entities.KindTemperature, OutcomeFailed)
	}
	s.countSkipped(entities.KindTemperature, skipped)
	if len(points) == 0 {
		log.Infof("Temperature page %s yielded no usable rows", url)
		return nil, s.record(entities.KindTemperature, OutcomeEmpty)
	}
	log.Infof("Parsed %d temperature points from %s (%d rows skipped)", len(points), url, skipped)
	return points, s.record(entities.KindTemperature, OutcomeOK)
}

func (s *Scraper) record(kind entities.ReadingKind, o Outcome) Outcome {
	if s.metrics != nil {
		s.metrics.Fetches.WithLabelValues(string(kind), string(o)).Inc()
	}
	return o
}

func (s *Scraper) countSkipped(kind entities.ReadingKind, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.RowsSkipped.WithLabelValues(string(kind)).Add(float64(n))
	}
}
