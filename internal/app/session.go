// Package app holds the Session: the journal store, navigation state, advisor
// and localization wired together behind one mutex so the CLI and the HTTP
// surface drive the same state.
package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"trademind/internal/agents"
	"trademind/internal/errors"
	"trademind/internal/i18n"
	"trademind/internal/journal"
	"trademind/internal/logging"
	"trademind/internal/metrics"
	"trademind/internal/models"
	"trademind/internal/resilience"
	"trademind/internal/router"
	"trademind/internal/stats"
	"trademind/internal/store"
)

// Timeframe filter modes.
const (
	ModeScaled = "scaled"
	ModeRange  = "range"
)

// Options tunes the aggregation behind the views.
type Options struct {
	// Baseline is the starting balance; nil means stats.DefaultBaseline.
	Baseline      *float64
	FeedLimit     int
	TimeframeMode string
	Jitter        stats.Jitter
	Language      models.Language
	Now           func() time.Time
	Logger        zerolog.Logger
}

// DefaultOptions returns the dashboard defaults with random jitter.
func DefaultOptions() Options {
	return Options{
		FeedLimit:     stats.DefaultFeedLimit,
		TimeframeMode: ModeScaled,
		Jitter:        stats.NewRandomJitter(rand.New(rand.NewSource(time.Now().UnixNano()))),
		Language:      i18n.DefaultLanguage,
		Now:           time.Now,
		Logger:        zerolog.Nop(),
	}
}

// Session is the single owner of mutable UI state.
type Session struct {
	mu       sync.Mutex
	store    *store.Store
	advisor  *agents.Advisor
	table    *i18n.Table
	opts     Options
	logger   zerolog.Logger
	baseline float64

	state router.State
	lang  models.Language

	advice        string
	adviceVersion uint64 // journal version the cached advice was built from
	version       uint64 // bumped on every journal mutation
	adviceFresh   bool
}

// NewSession wires a session. The persisted language preference, when valid,
// overrides opts.Language.
func NewSession(ctx context.Context, st *store.Store, advisor *agents.Advisor, table *i18n.Table, opts Options) *Session {
	def := DefaultOptions()
	if opts.FeedLimit <= 0 {
		opts.FeedLimit = def.FeedLimit
	}
	if opts.TimeframeMode == "" {
		opts.TimeframeMode = def.TimeframeMode
	}
	if opts.Jitter == nil {
		opts.Jitter = def.Jitter
	}
	if opts.Language == "" {
		opts.Language = def.Language
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}

	s := &Session{
		store:    st,
		advisor:  advisor,
		table:    table,
		opts:     opts,
		logger:   logging.WithComponent(opts.Logger, "session"),
		baseline: stats.DefaultBaseline,
		state:    router.Initial(),
		lang:     opts.Language,
		advice:   agents.InitialAdvice,
	}
	if opts.Baseline != nil {
		s.baseline = *opts.Baseline
	}

	if tag, ok := st.Language(ctx); ok {
		if lang, ok := i18n.Parse(tag); ok {
			s.lang = lang
		} else {
			s.logger.Warn().Str("tag", tag).Msg("Ignoring unknown saved language")
		}
	}
	metrics.SetJournalDays(st.Len())
	return s
}

// ============================================================================
// Navigation
// ============================================================================

// State returns the current navigation state.
func (s *Session) State() router.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch runs the reducer and executes any effect it returns. On error the
// state is unchanged.
func (s *Session) Dispatch(ctx context.Context, action router.Action) (router.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, eff, err := router.Reduce(s.state, action)
	if err != nil {
		return s.state, err
	}

	switch e := eff.(type) {
	case router.EnsureEntry:
		before := s.store.Len()
		if _, err := s.store.Ensure(ctx, e.Date); err != nil {
			return s.state, err
		}
		if s.store.Len() != before {
			s.touchLocked()
		}
	}

	s.state = next
	return s.state, nil
}

// ============================================================================
// Journal Mutations
// ============================================================================

// AddTrade records a new trade against date, creating the day if needed.
func (s *Session) AddTrade(ctx context.Context, date string, in journal.TradeInput) (models.Trade, error) {
	trade, err := journal.NewTrade(in, s.opts.Now())
	if err != nil {
		return models.Trade{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.store.Update(ctx, date, func(j models.DailyJournal) (models.DailyJournal, error) {
		return journal.AddTrade(j, trade), nil
	})
	if err != nil {
		return models.Trade{}, err
	}
	s.touchLocked()

	metrics.RecordTradeAdded()
	logging.LogTradeRecorded(s.logger, date, trade.ID, trade.Asset, string(trade.Direction), trade.PnL)
	return trade, nil
}

// RemoveTrade deletes a trade by id. It reports false when the day exists but
// holds no such trade, which leaves the entry untouched.
func (s *Session) RemoveTrade(ctx context.Context, date, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.store.Get(date)
	if !ok {
		return false, errors.Wrapf(errors.ErrJournalNotFound, "date %s", date)
	}
	if _, ok := journal.FindTrade(j, id); !ok {
		return false, nil
	}

	_, err := s.store.Update(ctx, date, func(j models.DailyJournal) (models.DailyJournal, error) {
		return journal.RemoveTrade(j, id), nil
	})
	if err != nil {
		return false, err
	}
	s.touchLocked()

	metrics.RecordTradeRemoved()
	dayLogger := logging.WithDate(s.logger, date)
	dayLogger.Info().Str("trade_id", id).Msg("Trade removed")
	return true, nil
}

// UpdateDay applies fn to the entry for date, creating it if absent.
func (s *Session) UpdateDay(ctx context.Context, date string, fn func(models.DailyJournal) (models.DailyJournal, error)) (models.DailyJournal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.store.Update(ctx, date, fn)
	if err != nil {
		return models.DailyJournal{}, err
	}
	s.touchLocked()
	return j, nil
}

// ReplaceDay stores j as the whole entry for date.
func (s *Session) ReplaceDay(ctx context.Context, date string, j models.DailyJournal) (models.DailyJournal, error) {
	return s.UpdateDay(ctx, date, func(models.DailyJournal) (models.DailyJournal, error) {
		j.Date = date
		if j.Trades == nil {
			j.Trades = []models.Trade{}
		}
		return j, nil
	})
}

// RefineNotes rewrites the notes of date through the advisor and saves the
// result. It reports false when the notes were left as they were.
func (s *Session) RefineNotes(ctx context.Context, date string) (string, bool, error) {
	j, ok := s.store.Get(date)
	if !ok {
		return "", false, errors.Wrapf(errors.ErrJournalNotFound, "date %s", date)
	}

	refined, ok := s.advisor.RefineNotes(ctx, j.Notes)
	if !ok {
		return j.Notes, false, nil
	}

	if _, err := s.UpdateDay(ctx, date, func(j models.DailyJournal) (models.DailyJournal, error) {
		return journal.WithNotes(j, refined), nil
	}); err != nil {
		return j.Notes, false, err
	}
	return refined, true, nil
}

// Undo restores the journals saved before the latest change.
func (s *Session) Undo(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, err := s.store.Revert(ctx)
	if err != nil {
		return 0, err
	}
	s.touchLocked()
	return days, nil
}

// SavedAt reports when the journals were last persisted.
func (s *Session) SavedAt(ctx context.Context) (time.Time, bool) {
	return s.store.SavedAt(ctx)
}

// touchLocked invalidates the cached advice after a journal change.
func (s *Session) touchLocked() {
	s.version++
	s.adviceFresh = false
	metrics.SetJournalDays(s.store.Len())
}

// ============================================================================
// Advisory
// ============================================================================

// Advice returns the coaching sentence, asking the advisor again when the
// journal changed since the last answer. The lock is not held during the call.
func (s *Session) Advice(ctx context.Context) string {
	s.mu.Lock()
	if s.adviceFresh {
		advice := s.advice
		s.mu.Unlock()
		return advice
	}
	version := s.version
	s.mu.Unlock()

	advice := s.advisor.Advice(ctx, s.store.All())

	s.mu.Lock()
	defer s.mu.Unlock()
	if version >= s.adviceVersion {
		s.advice = advice
		s.adviceVersion = version
		s.adviceFresh = version == s.version
	}
	return advice
}

// RefreshAdvice forces a new advice call regardless of the cache.
func (s *Session) RefreshAdvice(ctx context.Context) string {
	s.mu.Lock()
	s.adviceFresh = false
	s.mu.Unlock()
	return s.Advice(ctx)
}

// CachedAdvice returns the last advice without calling out.
func (s *Session) CachedAdvice() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advice, s.adviceFresh
}

// Macro returns the search-grounded macro briefing.
func (s *Session) Macro(ctx context.Context) agents.Report {
	return s.advisor.MacroContext(ctx)
}

// Scan runs a scanner preset. Custom rules only apply to editable presets.
func (s *Session) Scan(ctx context.Context, id string, rules []string) (agents.Scanner, agents.Report, error) {
	sc, err := agents.FindScanner(id)
	if err != nil {
		return agents.Scanner{}, agents.Report{}, err
	}
	sc = sc.WithRules(rules)
	name := s.T(sc.TitleKey)
	return sc, s.advisor.ScanResults(ctx, name, sc.Rules), nil
}

// Provider names the advisory backend.
func (s *Session) Provider() string {
	return s.advisor.Provider()
}

// Circuit reports the advisory circuit breaker, when one is installed.
func (s *Session) Circuit() (resilience.CircuitBreakerStats, bool) {
	return s.advisor.Circuit()
}

// ============================================================================
// Localization
// ============================================================================

// Language returns the active UI language.
func (s *Session) Language() models.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// SetLanguage switches and persists the UI language. A failed write is logged
// and the switch still applies for this session.
func (s *Session) SetLanguage(ctx context.Context, tag string) (models.Language, error) {
	lang, ok := i18n.Parse(tag)
	if !ok {
		return s.Language(), errors.Wrapf(errors.ErrUnknownLanguage, "language %q", tag)
	}

	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()

	if err := s.store.SetLanguage(ctx, string(lang)); err != nil {
		s.logger.Warn().Err(err).Str("language", string(lang)).Msg("Failed to persist language")
	}
	return lang, nil
}

// UseLanguage switches the UI language for this session only.
func (s *Session) UseLanguage(tag string) (models.Language, error) {
	lang, ok := i18n.Parse(tag)
	if !ok {
		return s.Language(), errors.Wrapf(errors.ErrUnknownLanguage, "language %q", tag)
	}
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
	return lang, nil
}

// T looks key up in the active language.
func (s *Session) T(key string) string {
	return s.table.T(s.Language(), key)
}

// Strings returns the full table for the active language.
func (s *Session) Strings() map[string]string {
	return s.table.All(s.Language())
}
