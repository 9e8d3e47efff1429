package integration

import (
	"bytes"
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/flusslauf/pegelmonitor/internal/entities"
	"github.com/flusslauf/pegelmonitor/internal/log"
	"github.com/flusslauf/pegelmonitor/internal/normalize"
)

var (
	// chartDataRe matches the embedded chart series literal, e.g.
	// data: [[212,18.4],[213,18.9]]
	chartDataRe = regexp.MustCompile(`data\s*:\s*\[\s*\[[^\]]*\](?:\s*,\s*\[[^\]]*\])*\s*\]`)

	// chartPairRe extracts the individual [dayOfYear, temperature] pairs
	chartPairRe = regexp.MustCompile(`\[\s*(\d{1,3})\s*,\s*(-?\d+(?:[.,]\d+)?)\s*\]`)

	// currentValueRe matches the live-value snippet on the page
	currentValueRe = regexp.MustCompile(`Der aktuelle Wert beträgt\s*(-?\d+(?:[.,]\d+)?)\s*Grad`)

	// lakeRowDateRe matches table dates like "12. Aug" or "3 Okt."
	lakeRowDateRe = regexp.MustCompile(`^(\d{1,2})\.?\s*([\p{L}]{3})`)
)

var germanMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mär": time.March,
	"mar": time.March, "apr": time.April, "mai": time.May,
	"jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "okt": time.October, "nov": time.November,
	"dez": time.December,
}

// FetchLakeTemperature extracts the lake temperature series from the one
// upstream that publishes it three ways: an embedded chart-data array
// keyed by day of year, an HTML table with short-month dates, and a
// live-value snippet. The three are merged by calendar day; the table
// wins over the chart, the live value wins over both for today. Any
// subset may be missing; only total absence of data is an empty outcome.
// refYear anchors day-of-year offsets, zero meaning the current year.
func (s *Scraper) FetchLakeTemperature(ctx context.Context, url string, refYear int) ([]entities.TemperaturePoint, Outcome) {
	body, err := s.fetcher.Get(ctx, url)
	if err != nil {
		log.Warnf("Lake temperature fetch failed: %v", err)
		return nil, s.record(entities.KindTemperature, OutcomeFailed)
	}

	now := s.clock.Now().In(s.loc)
	if refYear == 0 {
		refYear = now.Year()
	}

	chart := s.parseLakeChart(body, refYear)
	table := s.parseLakeTable(body, refYear)
	current := s.parseLakeCurrent(body, now)

	merged := s.mergeLakePoints(chart, table, current, now)
	if len(merged) == 0 {
		log.Infof("Lake page %s yielded no usable data from any source", url)
		return nil, s.record(entities.KindTemperature, OutcomeEmpty)
	}

	log.Infof("Merged %d lake temperature points from %s (chart=%d table=%d live=%v)",
		len(merged), url, len(chart), len(table), current != nil)
	return merged, s.record(entities.KindTemperature, OutcomeOK)
}

// parseLakeChart extracts the [dayOfYear, temperature] pairs. The pair
// pattern runs against the matched array literal when the primary
// pattern hits, and against the whole document as a fallback.
func (s *Scraper) parseLakeChart(body []byte, refYear int) []entities.TemperaturePoint {
	region := chartDataRe.Find(body)
	if region == nil {
		region = body
	}

	jan1 := time.Date(refYear, time.January, 1, 12, 0, 0, 0, s.loc)
	var points []entities.TemperaturePoint
	for _, m := range chartPairRe.FindAllSubmatch(region, -1) {
		doy, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		value, err := parseTemperatureValue(string(m[2]))
		if err != nil {
			continue
		}
		ts := jan1.AddDate(0, 0, doy)
		points = append(points, entities.TemperaturePoint{
			Date:        normalize.FormatDate(ts),
			Timestamp:   ts,
			Temperature: value,
		})
	}
	return points
}

// parseLakeTable extracts the [shortMonthDay, temperature] rows. Rows
// carry no time of day, so they are pinned to local noon.
func (s *Scraper) parseLakeTable(body []byte, refYear int) []entities.TemperaturePoint {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Warnf("Lake table parse failed: %v", err)
		return nil
	}

	var points []entities.TemperaturePoint
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		m := lakeRowDateRe.FindStringSubmatch(strings.TrimSpace(cells.Eq(0).Text()))
		if m == nil {
			return
		}
		day, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		month, ok := germanMonths[strings.ToLower(m[2])]
		if !ok {
			return
		}
		value, err := normalize.ParseDecimal(cells.Eq(1).Text())
		if err != nil {
			return
		}
		ts := time.Date(refYear, month, day, 12, 0, 0, 0, s.loc)
		points = append(points, entities.TemperaturePoint{
			Date:        normalize.FormatDate(ts),
			Timestamp:   ts,
			Temperature: value,
		})
	})
	return points
}

// parseLakeCurrent extracts the live-value snippet, if present
func (s *Scraper) parseLakeCurrent(body []byte, now time.Time) *entities.TemperaturePoint {
	m := currentValueRe.FindSubmatch(body)
	if m == nil {
		return nil
	}
	value, err := parseTemperatureValue(string(m[1]))
	if err != nil {
		return nil
	}
	ts := now.Truncate(time.Minute)
	return &entities.TemperaturePoint{
		Date:        normalize.FormatDate(ts),
		Timestamp:   ts,
		Temperature: value,
	}
}

// mergeLakePoints collapses the three sources into one series keyed by
// calendar day, newest first. Future-dated points never make it in.
func (s *Scraper) mergeLakePoints(chart, table []entities.TemperaturePoint, current *entities.TemperaturePoint, now time.Time) []entities.TemperaturePoint {
	today := dateKey(now)
	byDay := make(map[string]entities.TemperaturePoint)

	for _, p := range chart {
		if k := dateKey(p.Timestamp); k <= today {
			byDay[k] = p
		}
	}
	// The table is considered more authoritative than the chart.
	for _, p := range table {
		if k := dateKey(p.Timestamp); k <= today {
			byDay[k] = p
		}
	}
	// The live snippet is the freshest reading for today, whatever the
	// other sources said.
	if current != nil {
		byDay[today] = *current
	}

	merged := make([]entities.TemperaturePoint, 0, len(byDay))
	for _, p := range byDay {
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// parseTemperatureValue accepts both comma and dot decimal notation;
// the chart array uses JS literals, the rest of the page the German
// locale.
func parseTemperatureValue(s string) (float64, error) {
	if strings.Contains(s, ",") {
		return normalize.ParseDecimal(s)
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
