package integration

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/flusslauf/pegelmonitor/internal/entities"
	"github.com/flusslauf/pegelmonitor/internal/normalize"
)

// Selector strategies for locating the measurement table, tried in
// order until one yields candidate rows. The class-qualified selector
// matches the regular gkd layout; the bare ones catch stripped-down or
// reshuffled variants of the page.
var tableRowSelectors = []string{
	"table.tblsort tbody tr",
	"table tbody tr",
	"table tr",
}

type tableRow struct {
	date  string
	ts    time.Time
	value float64
	extra string
}

// parseRows walks the measurement table and extracts one row per
// surviving measurement, newest first. Rows whose date cell does not
// parse are treated as headers or captions and ignored; rows whose
// numeric cell fails to parse are counted as skipped.
func (s *Scraper) parseRows(body []byte) ([]tableRow, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse document: %w", err)
	}

	rows := selectDataRows(doc)

	var out []tableRow
	skipped := 0
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		dateStr := strings.TrimSpace(cells.Eq(0).Text())
		ts, err := normalize.ParseDate(dateStr, s.loc)
		if err != nil {
			return
		}
		value, err := normalize.ParseDecimal(cells.Eq(1).Text())
		if err != nil {
			skipped++
			return
		}
		extra := ""
		if cells.Length() >= 3 {
			extra = strings.TrimSpace(cells.Eq(2).Text())
		}
		out = append(out, tableRow{date: dateStr, ts: ts, value: value, extra: extra})
	})

	sort.Slice(out, func(i, j int) bool {
		return out[i].ts.After(out[j].ts)
	})
	return out, skipped, nil
}

// selectDataRows returns the rows of the first selector strategy that
// finds anything with at least two cells
func selectDataRows(doc *goquery.Document) *goquery.Selection {
	for _, sel := range tableRowSelectors {
		rows := doc.Find(sel)
		if rows.Length() == 0 {
			continue
		}
		usable := false
		rows.EachWithBreak(func(_ int, r *goquery.Selection) bool {
			if r.Find("td").Length() >= 2 {
				usable = true
				return false
			}
			return true
		})
		if usable {
			return rows
		}
	}
	return doc.Find(tableRowSelectors[len(tableRowSelectors)-1])
}

func (s *Scraper) parseLevelTable(body []byte) ([]entities.LevelPoint, int, error) {
	rows, skipped, err := s.parseRows(body)
	if err != nil {
		return nil, 0, err
	}
	points := make([]entities.LevelPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, entities.LevelPoint{
			Date:      r.date,
			Timestamp: r.ts,
			Level:     r.value,
			Hour:      r.ts.Hour(),
		})
	}
	return points, skipped, nil
}

func (s *Scraper) parseFlowTable(body []byte) ([]entities.FlowPoint, int, error) {
	rows, skipped, err := s.parseRows(body)
	if err != nil {
		return nil, 0, err
	}
	points := make([]entities.FlowPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, entities.FlowPoint{
			Date:      r.date,
			Timestamp: r.ts,
			Flow:      r.value,
		})
	}
	return points, skipped, nil
}

func (s *Scraper) parseTemperatureTable(body []byte) ([]entities.TemperaturePoint, int, error) {
	rows, skipped, err := s.parseRows(body)
	if err != nil {
		return nil, 0, err
	}
	points := make([]entities.TemperaturePoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, entities.TemperaturePoint{
			Date:        r.date,
			Timestamp:   r.ts,
			Temperature: r.value,
			Situation:   r.extra,
		})
	}
	return points, skipped, nil
}
