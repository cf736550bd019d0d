package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkaravas/valuescreen/internal/database"
	"github.com/mkaravas/valuescreen/internal/domain"
	"github.com/mkaravas/valuescreen/internal/events"
	"github.com/mkaravas/valuescreen/internal/results"
	"github.com/mkaravas/valuescreen/internal/screener"
	screenhandlers "github.com/mkaravas/valuescreen/internal/screener/handlers"
	"github.com/mkaravas/valuescreen/internal/universe"
	"github.com/mkaravas/valuescreen/internal/valuation"
)

type fixedProvider struct {
	metrics map[string]*domain.StockMetrics
}

func (p *fixedProvider) FetchMetrics(_ context.Context, ticker string) (*domain.StockMetrics, error) {
	m := *p.metrics[ticker]
	return &m, nil
}

func newTestServer(t *testing.T) (*Server, *universe.Repository) {
	t.Helper()

	dir := t.TempDir()
	log := zerolog.Nop()

	uniDB, err := database.New(database.Config{Path: filepath.Join(dir, "universe.db"), Name: "universe"})
	require.NoError(t, err)
	t.Cleanup(func() { uniDB.Close() })
	uniRepo := universe.NewRepository(uniDB.Conn(), log)
	require.NoError(t, uniRepo.Init())

	resDB, err := database.New(database.Config{Path: filepath.Join(dir, "results.db"), Name: "results"})
	require.NoError(t, err)
	t.Cleanup(func() { resDB.Close() })
	resRepo := results.NewRepository(resDB.Conn(), log)
	require.NoError(t, resRepo.Init())

	analyzer, err := valuation.NewAnalyzer(valuation.DefaultAssumptions(), valuation.DefaultSectorTable(0.06), log)
	require.NoError(t, err)

	bus := events.NewBus()
	service := screener.NewService(analyzer, bus, 2, log)

	provider := &fixedProvider{metrics: map[string]*domain.StockMetrics{
		"AAPL": {
			Ticker:            "AAPL",
			CurrentPrice:      180,
			SharesOutstanding: 500e6,
			OperatingCashFlow: domain.Float64Ptr(10e9),
			CapEx:             domain.Float64Ptr(2e9),
			NetIncome:         domain.Float64Ptr(9e9),
			TotalEquity:       domain.Float64Ptr(21e9),
		},
	}}
	runner := screener.NewRunner(service, provider, uniRepo, resRepo, time.Minute, 10, log)

	srv := New(Config{
		Log:              log,
		Port:             0,
		DataDir:          dir,
		Databases:        []*database.DB{uniDB, resDB},
		EventBus:         bus,
		ScreenHandler:    screenhandlers.NewHandler(runner, resRepo, log),
		UniverseHandlers: universe.NewHandlers(uniRepo, log),
	})
	return srv, uniRepo
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUniverseAddListDeactivate(t *testing.T) {
	srv, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"symbol": "aapl", "sector": "TECH_LARGE"}`)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/universe", body))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/universe", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp struct {
		Tickers []universe.Ticker `json:"tickers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Tickers, 1)
	assert.Equal(t, "AAPL", listResp.Tickers[0].Symbol)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/universe/AAPL", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/universe/ZZZZ", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUniverseAddValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/universe",
		bytes.NewBufferString(`{"sector": "TELECOM"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/universe",
		bytes.NewBufferString(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreenRunAndRetrieve(t *testing.T) {
	srv, uniRepo := newTestServer(t)
	require.NoError(t, uniRepo.Add("AAPL", "TECH_LARGE"))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/screen", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var run domain.ScreenRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Len(t, run.Results, 1)
	assert.Equal(t, "AAPL", run.Results[0].Ticker)
	assert.NotEmpty(t, run.ID)

	// Run is retrievable by id and as "latest".
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screen/runs/"+run.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screen/runs/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var latest domain.ScreenRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, run.ID, latest.ID)
}

func TestScreenExplicitTickers(t *testing.T) {
	srv, _ := newTestServer(t)

	// No universe needed when the body names the tickers.
	body := bytes.NewBufferString(`{"tickers": ["AAPL"]}`)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/screen", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var run domain.ScreenRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Len(t, run.Results, 1)
	assert.Equal(t, "AAPL", run.Results[0].Ticker)
}

func TestScreenRunNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screen/runs/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screen/runs/no-such-id", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScreenCSVExport(t *testing.T) {
	srv, uniRepo := newTestServer(t)
	require.NoError(t, uniRepo.Add("AAPL", "TECH_LARGE"))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/screen", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screen/runs/latest/export.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "ticker,price,intrinsic_value")
	assert.Contains(t, rec.Body.String(), "AAPL")
}

func TestListRunsLimitValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screen/runs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screen/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":[]}`, rec.Body.String())
}

func TestSystemStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.GreaterOrEqual(t, status.UptimeSeconds, 0.0)
}
