package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTMLServer creates a test server that serves a fixed HTML response
func mockHTMLServer(html string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, html)
	}))
}

func testScraper(t *testing.T, now time.Time) *Scraper {
	t.Helper()
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return NewScraper(5*time.Second, berlin, clockwork.NewFakeClockAt(now), nil)
}

var testNow = time.Date(2025, time.August, 5, 10, 30, 0, 0, time.UTC)

const levelPageHTML = `
<!DOCTYPE html>
<html>
<body>
<h1>Wasserstand München / Isar</h1>
<table class="tblsort">
<thead><tr><th>Datum</th><th>Wasserstand [cm]</th></tr></thead>
<tbody>
<tr><td>05.08.2025 10:15</td><td>150</td></tr>
<tr><td>05.08.2025 10:00</td><td>148</td></tr>
<tr><td>05.08.2025 09:45</td><td>--</td></tr>
<tr><td>05.08.2025 09:30</td><td>147</td></tr>
</tbody>
</table>
</body>
</html>`

func TestFetchLevelSeries(t *testing.T) {
	server := mockHTMLServer(levelPageHTML)
	defer server.Close()

	s := testScraper(t, testNow)
	points, outcome := s.FetchLevelSeries(context.Background(), server.URL)

	assert.Equal(t, OutcomeOK, outcome)
	// The malformed row is skipped silently, the other three survive.
	require.Len(t, points, 3)

	assert.Equal(t, "05.08.2025 10:15", points[0].Date)
	assert.Equal(t, 150.0, points[0].Level)
	assert.Equal(t, 10, points[0].Hour)
	assert.Equal(t, 2025, points[0].Timestamp.Year())

	// Newest first.
	assert.True(t, points[0].Timestamp.After(points[1].Timestamp))
	assert.True(t, points[1].Timestamp.After(points[2].Timestamp))
	assert.Equal(t, 147.0, points[2].Level)
}

func TestFetchLevelSeriesSelectorFallback(t *testing.T) {
	// No tblsort class anywhere; the parser must fall back to the
	// unqualified selectors.
	server := mockHTMLServer(`
<html><body>
<table>
<tr><td>05.08.2025 10:15</td><td>92,5</td></tr>
<tr><td>05.08.2025 10:00</td><td>91,0</td></tr>
</table>
</body></html>`)
	defer server.Close()

	s := testScraper(t, testNow)
	points, outcome := s.FetchLevelSeries(context.Background(), server.URL)

	assert.Equal(t, OutcomeOK, outcome)
	require.Len(t, points, 2)
	assert.Equal(t, 92.5, points[0].Level)
}

func TestFetchFlowSeries(t *testing.T) {
	server := mockHTMLServer(`
<html><body>
<table class="tblsort"><tbody>
<tr><td>05.08.2025 10:15</td><td>23,4</td></tr>
<tr><td>05.08.2025 10:00</td><td>22,9</td></tr>
</tbody></table>
</body></html>`)
	defer server.Close()

	s := testScraper(t, testNow)
	points, outcome := s.FetchFlowSeries(context.Background(), server.URL)

	assert.Equal(t, OutcomeOK, outcome)
	require.Len(t, points, 2)
	assert.Equal(t, 23.4, points[0].Flow)
	assert.Equal(t, "05.08.2025 10:15", points[0].Date)
}

func TestFetchTemperatureSeriesWithSituation(t *testing.T) {
	server := mockHTMLServer(`
<html><body>
<table class="tblsort"><tbody>
<tr><td>05.08.2025 10:00</td><td>17,2</td><td>leicht getrübt</td></tr>
<tr><td>05.08.2025 09:00</td><td>17,0</td><td></td></tr>
</tbody></table>
</body></html>`)
	defer server.Close()

	s := testScraper(t, testNow)
	points, outcome := s.FetchTemperatureSeries(context.Background(), server.URL)

	assert.Equal(t, OutcomeOK, outcome)
	require.Len(t, points, 2)
	assert.Equal(t, 17.2, points[0].Temperature)
	assert.Equal(t, "leicht getrübt", points[0].Situation)
	assert.Empty(t, points[1].Situation)
}

func TestFetchSeriesEmptyPage(t *testing.T) {
	server := mockHTMLServer(`<html><body><p>Keine Daten verfügbar</p></body></html>`)
	defer server.Close()

	s := testScraper(t, testNow)
	points, outcome := s.FetchLevelSeries(context.Background(), server.URL)

	assert.Equal(t, OutcomeEmpty, outcome)
	assert.Empty(t, points)
}

func TestFetchSeriesAllRowsMalformed(t *testing.T) {
	server := mockHTMLServer(`
<html><body>
<table class="tblsort"><tbody>
<tr><td>05.08.2025 10:15</td><td>n/a</td></tr>
<tr><td>05.08.2025 10:00</td><td>-</td></tr>
</tbody></table>
</body></html>`)
	defer server.Close()

	s := testScraper(t, testNow)
	points, outcome := s.FetchFlowSeries(context.Background(), server.URL)

	assert.Equal(t, OutcomeEmpty, outcome)
	assert.Empty(t, points)
}

func TestFetchSeriesUpstreamErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		s := testScraper(t, testNow)
		points, outcome := s.FetchLevelSeries(context.Background(), server.URL)
		assert.Equal(t, OutcomeFailed, outcome)
		assert.Empty(t, points)
	})

	t.Run("unreachable host", func(t *testing.T) {
		server := mockHTMLServer("")
		url := server.URL
		server.Close()

		s := testScraper(t, testNow)
		points, outcome := s.FetchLevelSeries(context.Background(), url)
		assert.Equal(t, OutcomeFailed, outcome)
		assert.Empty(t, points)
	})
}

func TestFetcherSendsScraperHeaders(t *testing.T) {
	var gotUA, gotCacheControl string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCacheControl = r.Header.Get("Cache-Control")
		io.WriteString(w, "<html></html>")
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	_, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, userAgent, gotUA)
	assert.Equal(t, "no-cache", gotCacheControl)
}
