package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademind/internal/agents"
	"trademind/internal/app"
	"trademind/internal/i18n"
	"trademind/internal/journal"
	"trademind/internal/models"
	"trademind/internal/resilience"
	"trademind/internal/router"
	"trademind/internal/stats"
	"trademind/internal/store"
	"trademind/internal/trading"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	table, err := i18n.New()
	require.NoError(t, err)
	st := store.Load(ctx, store.NewMemoryKV(), journal.Seed())
	advisor := agents.NewAdvisor(nil, agents.AdvisorConfig{}, zerolog.Nop())
	session := app.NewSession(ctx, st, advisor, table, app.Options{
		Jitter: stats.NoJitter{},
		Now:    func() time.Time { return time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC) },
	})

	return New(Config{Log: zerolog.Nop(), Session: session, Port: 0, DevMode: true, Version: "test"})
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "none", body["provider"])
}

type downLLM struct{}

func (downLLM) Provider() string { return "down" }

func (downLLM) Generate(context.Context, agents.Prompt) (agents.Completion, error) {
	return agents.Completion{}, errors.New("503 service unavailable")
}

func TestHealth_DegradedWhenCircuitOpen(t *testing.T) {
	ctx := context.Background()
	table, err := i18n.New()
	require.NoError(t, err)

	cb := resilience.NewCircuitBreaker("down", resilience.CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Hour}, zerolog.Nop())
	advisor := agents.NewAdvisor(agents.NewGuardedClient(downLLM{}, cb, nil), agents.AdvisorConfig{}, zerolog.Nop())
	session := app.NewSession(ctx, store.Load(ctx, store.NewMemoryKV(), journal.Seed()), advisor, table, app.Options{Jitter: stats.NoJitter{}})
	s := New(Config{Log: zerolog.Nop(), Session: session, Version: "test"})

	var body map[string]interface{}
	decodeBody(t, do(t, s, http.MethodGet, "/health", nil), &body)
	assert.Equal(t, "healthy", body["status"])

	do(t, s, http.MethodGet, "/api/advice", nil)

	decodeBody(t, do(t, s, http.MethodGet, "/health", nil), &body)
	assert.Equal(t, "degraded", body["status"])
	circuit, ok := body["circuit"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "OPEN", circuit["state"])
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/dashboard?timeframe=1h&tab=drawdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view app.DashboardView
	decodeBody(t, rec, &view)
	assert.Equal(t, models.Timeframe1h, view.Rollup.Timeframe)
	assert.Equal(t, models.TabDrawdown, view.State.DashboardTab)
	require.Len(t, view.Equity, 2)
	assert.Equal(t, 47250.0, view.Balance)
	assert.Equal(t, agents.InitialAdvice, view.Advice)

	rec = do(t, s, http.MethodGet, "/api/dashboard?timeframe=3d", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var state router.State
	decodeBody(t, do(t, s, http.MethodGet, "/api/state", nil), &state)
	assert.Equal(t, router.Initial(), state, "reading the dashboard leaves navigation alone")
}

func TestCalendar(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/calendar?month=2025-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cal app.CalendarView
	decodeBody(t, rec, &cal)
	assert.Len(t, cal.Cells, 31)
	assert.Equal(t, 250.0, cal.Total)

	rec = do(t, s, http.MethodGet, "/api/calendar?month=January", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/journals/2025-01-20/trades", map[string]interface{}{
		"asset":     "nq",
		"direction": "short",
		"lots":      1,
		"pnl":       -125.5,
		"strategy":  "ORB",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var trade models.Trade
	decodeBody(t, rec, &trade)
	assert.Equal(t, "NQ", trade.Asset)
	assert.Equal(t, models.DirectionSell, trade.Direction)

	rec = do(t, s, http.MethodGet, "/api/journals/2025-01-20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var day app.DayView
	decodeBody(t, rec, &day)
	assert.Equal(t, -125.5, day.Total)
	assert.False(t, day.Winning)

	rec = do(t, s, http.MethodDelete, "/api/journals/2025-01-20/trades/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/journals/2025-01-20/trades/"+trade.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/journals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []stats.JournalRow
	decodeBody(t, rec, &rows)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-01-20", rows[0].Date)
}

func TestAddTrade_Invalid(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/journals/2025-01-20/trades", map[string]interface{}{
		"asset": "EURUSD",
		"lots":  1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/journals/2025-01-20/trades", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPutDay(t *testing.T) {
	s := newTestServer(t)

	body := models.DailyJournal{
		Emotion:         models.EmotionDisciplined,
		Notes:           "Waited for the retest.",
		DisciplineScore: 8,
		Checklist:       models.Checklist{FollowedPlan: true, ProperSetup: true},
	}
	rec := do(t, s, http.MethodPut, "/api/journals/2025-01-21", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var day app.DayView
	decodeBody(t, rec, &day)
	assert.Equal(t, models.EmotionDisciplined, day.Journal.Emotion)
	assert.Equal(t, 2, day.ChecklistPassed)
	assert.NotNil(t, day.Journal.Trades)

	body.DisciplineScore = 11
	rec = do(t, s, http.MethodPut, "/api/journals/2025-01-21", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body.DisciplineScore = 5
	body.Date = "2025-01-22"
	rec = do(t, s, http.MethodPut, "/api/journals/2025-01-21", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUndo_NoHistory(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/journals/undo", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetDay_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/journals/2024-12-31", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdvisoryFallbacks(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/advice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var advice map[string]string
	decodeBody(t, rec, &advice)
	assert.Equal(t, agents.AdviceError, advice["advice"])

	rec = do(t, s, http.MethodGet, "/api/macro", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var macro agents.Report
	decodeBody(t, rec, &macro)
	assert.Equal(t, agents.MacroError, macro.Text)
	assert.True(t, macro.Fallback)
	assert.NotNil(t, macro.Sources)

	rec = do(t, s, http.MethodPost, "/api/scan", scanRequest{Scanner: "finviz", RulesText: "Price > 5\n\n  Volume > 1M  "})
	require.Equal(t, http.StatusOK, rec.Code)
	var scan scanResponse
	decodeBody(t, rec, &scan)
	assert.Equal(t, agents.ScanError, scan.Text)
	assert.Equal(t, []string{"Price > 5", "Volume > 1M"}, scan.Rules)

	rec = do(t, s, http.MethodPost, "/api/scan", scanRequest{Scanner: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScanners(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/scanners", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []scannerResponse
	decodeBody(t, rec, &list)
	assert.Len(t, list, 6)
	for _, sc := range list {
		assert.NotEmpty(t, sc.Title, sc.ID)
	}
}

func TestBreakout(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/breakout", map[string]interface{}{"asset": "xau"})
	require.Equal(t, http.StatusOK, rec.Code)
	var plan trading.Plan
	decodeBody(t, rec, &plan)
	assert.Equal(t, trading.BiasLong, plan.Bias)
	assert.Equal(t, 250.0, plan.RiskAmount)

	inside := 2645.0
	rec = do(t, s, http.MethodPost, "/api/breakout", map[string]interface{}{"asset": "XAU", "current": inside})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &plan)
	assert.Equal(t, trading.BiasNoTrade, plan.Bias)
	assert.Zero(t, plan.MaxLots)

	rec = do(t, s, http.MethodPost, "/api/breakout", map[string]interface{}{"asset": "BTC"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLanguage(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/language", map[string]string{"language": "ar"})
	require.Equal(t, http.StatusOK, rec.Code)
	var lang languageResponse
	decodeBody(t, rec, &lang)
	assert.Equal(t, models.LanguageArabic, lang.Language)
	assert.True(t, lang.RTL)

	rec = do(t, s, http.MethodGet, "/api/strings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var strs struct {
		Language models.Language   `json:"language"`
		Strings  map[string]string `json:"strings"`
	}
	decodeBody(t, rec, &strs)
	assert.Equal(t, models.LanguageArabic, strs.Language)
	assert.NotEmpty(t, strs.Strings["dashboard"])

	rec = do(t, s, http.MethodPut, "/api/language", map[string]string{"language": "xx"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/navigate", navigateRequest{Action: "navigate", Value: "journal-day"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/navigate", navigateRequest{Action: "openDay", Value: "2025-03-03"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state map[string]interface{}
	decodeBody(t, rec, &state)
	assert.Equal(t, "journal-day", state["view"])
	assert.Equal(t, "2025-03-03", state["selectedDate"])

	// the opened day now exists
	rec = do(t, s, http.MethodGet, "/api/journals/2025-03-03", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/navigate", navigateRequest{Action: "teleport"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodGet, "/api/advice", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trademind_advisory_calls_total")
}

func TestAdviceRefresher(t *testing.T) {
	s := newTestServer(t)

	_, err := NewAdviceRefresher(s.session, "not a schedule", zerolog.Nop())
	assert.Error(t, err)

	r, err := NewAdviceRefresher(s.session, "@every 1h", zerolog.Nop())
	require.NoError(t, err)
	r.run()
	advice, fresh := s.session.CachedAdvice()
	assert.True(t, fresh)
	assert.Equal(t, agents.AdviceError, advice)

	r.Start()
	r.Stop()
}
