package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"trademind/internal/agents"
	"trademind/internal/errors"
	"trademind/internal/i18n"
	"trademind/internal/journal"
	"trademind/internal/logging"
	"trademind/internal/models"
	"trademind/internal/resilience"
	"trademind/internal/router"
	"trademind/internal/trading"
	"trademind/pkg/utils"
)

// ============================================================================
// Helpers
// ============================================================================

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrInputValidation),
		errors.Is(err, errors.ErrUnknownLanguage):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrJournalNotFound),
		errors.Is(err, errors.ErrTradeNotFound),
		errors.Is(err, errors.ErrUnknownScanner):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrNoSelectedDate),
		errors.Is(err, errors.ErrNoHistory):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		reqLogger := logging.FromContext(r.Context())
		reqLogger.Error().Err(err).Msg("Request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, errors.NewValidationError("body", nil, "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// ============================================================================
// Health and Views
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":   "healthy",
		"version":  s.version,
		"service":  "trademind",
		"provider": s.session.Provider(),
	}
	if stats, ok := s.session.Circuit(); ok {
		body["circuit"] = stats
		if stats.State != resilience.CircuitClosed {
			body["status"] = "degraded"
		}
	}
	s.writeJSON(w, http.StatusOK, body)
}

// handleDashboard applies optional timeframe and tab selections before
// building the view, the same way the sidebar does.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := s.session.DashboardWith(models.Timeframe(q.Get("timeframe")), models.DashboardTab(q.Get("tab")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month := s.session.CurrentMonth()
	if m := r.URL.Query().Get("month"); m != "" {
		y, mo, err := utils.ParseMonth(m)
		if err != nil {
			s.writeError(w, r, errors.NewValidationError("month", m, "expected YYYY-MM"))
			return
		}
		year, month = y, mo
	}
	s.writeJSON(w, http.StatusOK, s.session.Calendar(year, month))
}

// ============================================================================
// Journal Handlers
// ============================================================================

func (s *Server) handleJournalList(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.JournalList())
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	day, err := s.session.Day(chi.URLParam(r, "date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, day)
}

func (s *Server) handlePutDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	var body models.DailyJournal
	if !s.decode(w, r, &body) {
		return
	}
	if body.Date != "" && body.Date != date {
		s.writeError(w, r, errors.NewValidationError("date", body.Date, "does not match path"))
		return
	}

	if _, err := s.session.ReplaceDay(r.Context(), date, body); err != nil {
		s.writeError(w, r, err)
		return
	}
	day, err := s.session.Day(date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, day)
}

func (s *Server) handleAddTrade(w http.ResponseWriter, r *http.Request) {
	var in journal.TradeInput
	if !s.decode(w, r, &in) {
		return
	}
	if d, ok := models.ParseDirection(string(in.Direction)); ok {
		in.Direction = d
	}

	trade, err := s.session.AddTrade(r.Context(), chi.URLParam(r, "date"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleRemoveTrade(w http.ResponseWriter, r *http.Request) {
	date, id := chi.URLParam(r, "date"), chi.URLParam(r, "id")

	removed, err := s.session.RemoveTrade(r.Context(), date, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, errors.Wrapf(errors.ErrTradeNotFound, "trade %s on %s", id, date))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefineNotes(w http.ResponseWriter, r *http.Request) {
	notes, refined, err := s.session.RefineNotes(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"notes":   notes,
		"refined": refined,
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	days, err := s.session.Undo(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"days": days, "reverted": true})
}

// ============================================================================
// Advisory Handlers
// ============================================================================

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var advice string
	if r.URL.Query().Get("refresh") == "true" {
		advice = s.session.RefreshAdvice(r.Context())
	} else {
		advice = s.session.Advice(r.Context())
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

func (s *Server) handleMacro(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.Macro(r.Context()))
}

type scannerResponse struct {
	agents.Scanner
	Title string `json:"title"`
}

func (s *Server) handleScanners(w http.ResponseWriter, r *http.Request) {
	presets := agents.Scanners()
	out := make([]scannerResponse, 0, len(presets))
	for _, sc := range presets {
		out = append(out, scannerResponse{Scanner: sc, Title: s.session.T(sc.TitleKey)})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type scanRequest struct {
	Scanner   string   `json:"scanner"`
	Rules     []string `json:"rules"`
	RulesText string   `json:"rulesText"`
}

type scanResponse struct {
	agents.Report
	Scanner string   `json:"scanner"`
	Rules   []string `json:"rules"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !s.decode(w, r, &req) {
		return
	}
	rules := req.Rules
	if len(rules) == 0 && req.RulesText != "" {
		rules = agents.ParseRules(req.RulesText)
	}

	sc, report, err := s.session.Scan(r.Context(), req.Scanner, rules)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, scanResponse{Report: report, Scanner: sc.ID, Rules: sc.Rules})
}

type breakoutRequest struct {
	Asset       string   `json:"asset"`
	High        *float64 `json:"high"`
	Low         *float64 `json:"low"`
	Current     *float64 `json:"current"`
	StopOffset  *float64 `json:"sl"`
	Capital     *float64 `json:"capital"`
	RiskPercent *float64 `json:"riskPercent"`
}

// handleBreakout evaluates a range, filling omitted values from the asset
// preset and the default risk budget.
func (s *Server) handleBreakout(w http.ResponseWriter, r *http.Request) {
	var req breakoutRequest
	if !s.decode(w, r, &req) {
		return
	}

	rng, ok := trading.Preset(req.Asset)
	if !ok {
		s.writeError(w, r, errors.NewValidationError("asset", req.Asset,
			"expected one of "+strings.Join(trading.PresetAssets(), ", ")))
		return
	}
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&rng.High, req.High)
	set(&rng.Low, req.Low)
	set(&rng.Current, req.Current)
	set(&rng.StopOffset, req.StopOffset)

	capital, risk := trading.DefaultCapital, trading.DefaultRiskPercent
	set(&capital, req.Capital)
	set(&risk, req.RiskPercent)

	plan, err := trading.Evaluate(rng, capital, risk)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

// ============================================================================
// Localization and Navigation
// ============================================================================

type languageResponse struct {
	Language  models.Language   `json:"language"`
	RTL       bool              `json:"rtl"`
	Supported []models.Language `json:"supported"`
}

func (s *Server) languageResponse() languageResponse {
	lang := s.session.Language()
	return languageResponse{Language: lang, RTL: i18n.IsRTL(lang), Supported: i18n.Supported()}
}

func (s *Server) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.languageResponse())
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.session.SetLanguage(r.Context(), req.Language); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.languageResponse())
}

func (s *Server) handleStrings(w http.ResponseWriter, r *http.Request) {
	lang := s.session.Language()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"language": lang,
		"rtl":      i18n.IsRTL(lang),
		"strings":  s.session.Strings(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.State())
}

type navigateRequest struct {
	Action string `json:"action"` // navigate, openDay, dashboardTab, timeframe, dayTab
	Value  string `json:"value"`
}

func (a navigateRequest) toAction() (router.Action, error) {
	switch a.Action {
	case "navigate":
		return router.Navigate{View: models.View(a.Value)}, nil
	case "openDay":
		return router.OpenDay{Date: a.Value}, nil
	case "dashboardTab":
		return router.SelectDashboardTab{Tab: models.DashboardTab(a.Value)}, nil
	case "timeframe":
		return router.SelectTimeframe{Timeframe: models.Timeframe(a.Value)}, nil
	case "dayTab":
		return router.SelectDayTab{Tab: models.DayTab(a.Value)}, nil
	}
	return nil, errors.NewValidationError("action", a.Action, "unknown navigation action")
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !s.decode(w, r, &req) {
		return
	}
	action, err := req.toAction()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := s.session.Dispatch(r.Context(), action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}
