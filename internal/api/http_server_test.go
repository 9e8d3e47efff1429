package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flusslauf/pegelmonitor/internal/config"
	"github.com/flusslauf/pegelmonitor/internal/entities"
	"github.com/flusslauf/pegelmonitor/internal/integration"
	"github.com/flusslauf/pegelmonitor/internal/usecases"
)

func levelPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	// Five readings 15 minutes apart, newest 160 down to 150 an hour ago.
	base := time.Date(2025, time.August, 5, 10, 0, 0, 0, time.UTC)
	body := `<html><body><table class="tblsort"><tbody>`
	for i, level := range []int{160, 158, 156, 154, 150} {
		ts := base.Add(-time.Duration(i) * 15 * time.Minute)
		body += fmt.Sprintf("<tr><td>%s</td><td>%d</td></tr>", ts.Format("02.01.2006 15:04"), level)
	}
	body += `</tbody></table></body></html>`
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}))
}

func testServer(t *testing.T) *Server {
	t.Helper()
	upstream := levelPageServer(t)
	t.Cleanup(upstream.Close)

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	cfg := &config.Config{
		FetchTimeout: 5 * time.Second,
		CacheTTL:     time.Minute,
		Location:     berlin,
		WaterBodies: []config.WaterBody{
			{Name: "Isar", Location: "München", LevelURL: upstream.URL},
		},
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.August, 5, 10, 30, 0, 0, time.UTC))
	scraper := integration.NewScraper(cfg.FetchTimeout, berlin, clock, nil)
	uc := usecases.NewRiverUseCase(cfg, scraper, nil, nil, clock)
	return NewServer(":0", uc)
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetRivers(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, "/api/rivers")
	require.Equal(t, http.StatusOK, rec.Code)

	var data entities.RiversData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	require.Len(t, data.Rivers, 1)
	assert.Equal(t, "Isar", data.Rivers[0].Name)
	require.NotNil(t, data.Rivers[0].CurrentLevel)
	assert.Equal(t, 160.0, data.Rivers[0].CurrentLevel.Level)
}

func TestGetRiverByName(t *testing.T) {
	s := testServer(t)

	// Lookup is case-insensitive.
	rec := doRequest(t, s, "/api/rivers/isar")
	require.Equal(t, http.StatusOK, rec.Code)

	var rd entities.RiverData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rd))
	assert.Equal(t, "Isar", rd.Name)
	assert.Len(t, rd.LevelHistory, 5)

	rec = doRequest(t, s, "/api/rivers/Donau")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRiverChange(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, "/api/rivers/Isar/change?kind=level&range=1h")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats entities.ChangeStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.NotNil(t, stats.AbsoluteChange)
	assert.Equal(t, 10.0, *stats.AbsoluteChange)
	assert.Equal(t, entities.ChangeSmallIncrease, stats.Status)
	assert.Equal(t, entities.Range1Hour, stats.Range)
}

func TestGetRiverChangeValidation(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, "/api/rivers/Isar/change?kind=salinity")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, "/api/rivers/Isar/change?range=3days")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Defaults are level over 24 hours.
	rec = doRequest(t, s, "/api/rivers/Isar/change")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats entities.ChangeStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, entities.Range24Hours, stats.Range)
	// Five samples are below the 24h window minimum.
	assert.Nil(t, stats.AbsoluteChange)
	assert.Equal(t, entities.ChangeStable, stats.Status)
}
