package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketwatch/internal/domain"
	"github.com/alanyoungcy/marketwatch/internal/metrics"
	"github.com/alanyoungcy/marketwatch/internal/server/handler"
	"github.com/alanyoungcy/marketwatch/internal/service"
	"github.com/alanyoungcy/marketwatch/internal/store/jsonfile"
	"github.com/alanyoungcy/marketwatch/internal/watcher"
)

const apiKey = "test-key"

type fixture struct {
	h       http.Handler
	market  *service.MarketService
	state   *watcher.State
	profile *service.ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := jsonfile.New(t.TempDir())
	require.NoError(t, err)
	profiles := service.NewProfileService(store.Profiles(), store.Settings(), logger)
	require.NoError(t, profiles.Init(context.Background()))

	market := service.NewMarketService()
	state := watcher.NewState(t.TempDir())
	reg := metrics.NewRegistry()
	metrics.NewIngest(reg)

	handlers := Handlers{
		Health:   handler.NewHealthHandler(nil, logger),
		Status:   handler.NewStatusHandler("server", time.Now(), state, market, profiles),
		Profiles: handler.NewProfileHandler(profiles, logger),
		Watch:    handler.NewWatchHandler(state, logger),
		Market:   handler.NewMarketHandler(market, profiles),
		Metrics:  metrics.Handler(reg),
	}
	h := NewHandler(Config{APIKey: apiKey}, handlers, nil, nil, logger)
	return &fixture{h: h, market: market, state: state, profile: profiles}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-API-Key", apiKey)
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthIsPublic(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])

	rec = httptest.NewRecorder()
	f.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.market.PublishStatus(context.Background(), "Watching for market logs..."))

	rec := f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "server", body["mode"])
	assert.Equal(t, f.state.Dir(), body["watchDir"])
	assert.Equal(t, domain.DefaultProfileName, body["activeProfile"])
	assert.Equal(t, "Watching for market logs...", body["lastStatus"])
}

func TestProfileLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/profiles/Jita", `{"accounting":5,"brokerRelations":4,"buyRange":1,"sellRange":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/profiles", "")
	var list struct {
		Profiles []string `json:"profiles"`
		Active   string   `json:"active"`
	}
	decode(t, rec, &list)
	assert.Equal(t, []string{"Default", "Jita"}, list.Profiles)
	assert.Equal(t, "Default", list.Active)

	rec = f.do(t, http.MethodPost, "/api/profiles/Jita/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jita", f.profile.Active().ProfileName)
	assert.Equal(t, uint8(5), f.profile.Active().Accounting)

	rec = f.do(t, http.MethodGet, "/api/settings", "")
	var settings domain.AppSettings
	decode(t, rec, &settings)
	assert.Equal(t, "Jita", settings.SelectedProfile)

	rec = f.do(t, http.MethodDelete, "/api/profiles/Jita", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Default", f.profile.Active().ProfileName)
}

func TestProfileErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"save default", http.MethodPut, "/api/profiles/Default", `{}`, http.StatusConflict},
		{"delete default", http.MethodDelete, "/api/profiles/Default", "", http.StatusConflict},
		{"out of range skill", http.MethodPut, "/api/profiles/Bad", `{"accounting":9}`, http.StatusBadRequest},
		{"unknown field", http.MethodPut, "/api/profiles/Bad", `{"wallet":1}`, http.StatusBadRequest},
		{"bad json", http.MethodPut, "/api/profiles/Bad", `{`, http.StatusBadRequest},
		{"bad mode", http.MethodPut, "/api/settings", `{"selectedProfile":"Default","autoCopyMode":"both"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestWatch(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/watch", `{"dir":"relative/logs"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	dir := filepath.Join(t.TempDir(), "marketlogs")
	rec = f.do(t, http.MethodPut, "/api/watch", `{"dir":"`+filepath.ToSlash(dir)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, filepath.Clean(filepath.ToSlash(dir)), f.state.Dir())

	select {
	case <-f.state.Changed():
	default:
		t.Fatal("expected a directory change signal")
	}

	rec = f.do(t, http.MethodGet, "/api/watch", "")
	var body struct {
		Dir string `json:"dir"`
	}
	decode(t, rec, &body)
	assert.Equal(t, f.state.Dir(), body.Dir)
}

func TestMarketLatest(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/market/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, f.market.PublishSnapshot(context.Background(), domain.MarketSnapshot{
		ItemName:       "Tritanium",
		TypeID:         34,
		SellPrice:      6,
		BuyPrice:       4,
		SellOrderCount: 3,
		BuyOrderCount:  2,
		SellPrice95CI:  5.5,
		BuyPrice95CI:   4.5,
	}))

	rec = f.do(t, http.MethodGet, "/api/market/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Snapshot domain.MarketSnapshot `json:"snapshot"`
		Profile  string                `json:"profile"`
		Trade    struct {
			Revenue    float64 `json:"revenue"`
			Profit     float64 `json:"profit"`
			ProfitText string  `json:"profitText"`
		} `json:"trade"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "Tritanium", body.Snapshot.ItemName)
	assert.Equal(t, domain.DefaultProfileName, body.Profile)
	assert.Greater(t, body.Trade.Revenue, 0.0)
	assert.True(t, strings.HasSuffix(body.Trade.ProfitText, " ISK"))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketwatch_ingest_files_seen_total")
}
