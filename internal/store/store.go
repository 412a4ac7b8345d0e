package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"trademind/internal/errors"
	"trademind/internal/journal"
	"trademind/internal/models"
	"trademind/pkg/utils"
)

// Store is the date-keyed journal map and the single source of truth for
// every view. Each mutation writes a full snapshot through the KV.
type Store struct {
	mu       sync.RWMutex
	journals models.Journals
	kv       KV
	retry    utils.RetryConfig
	logger   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for write failures and recovery.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger.With().Str("component", "store").Logger() }
}

// WithRetry overrides the write retry policy.
func WithRetry(cfg utils.RetryConfig) Option {
	return func(s *Store) { s.retry = cfg }
}

// New returns an empty store persisting through kv. A nil kv keeps the
// store in memory only.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		journals: make(models.Journals),
		kv:       kv,
		retry:    utils.DefaultRetryConfig(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores the store from kv. A missing key yields seed; an unreadable
// or corrupt snapshot is logged and replaced with seed.
func Load(ctx context.Context, kv KV, seed models.Journals, opts ...Option) *Store {
	s := New(kv, opts...)

	data, ok, err := kv.Get(ctx, JournalsKey)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Msg("Failed to read journals, starting from sample data")
		s.journals = cloneAll(seed)
	case !ok:
		s.logger.Debug().Msg("No saved journals, starting from sample data")
		s.journals = cloneAll(seed)
	default:
		journals, err := decode(data)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Saved journals are corrupt, starting from sample data")
			s.journals = cloneAll(seed)
		} else {
			s.journals = journals
		}
	}

	s.logger.Info().Int("days", len(s.journals)).Msg("Journal store loaded")
	return s
}

// Restore decodes a snapshot into a memory-only store.
func Restore(data []byte) (*Store, error) {
	journals, err := decode(data)
	if err != nil {
		return nil, err
	}
	s := New(nil)
	s.journals = journals
	return s, nil
}

// ============================================================================
// Journal Methods
// ============================================================================

// Get returns the entry for date, if any.
func (s *Store) Get(date string) (models.DailyJournal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.journals[date]
	if !ok {
		return models.DailyJournal{}, false
	}
	return journal.Clone(j), true
}

// Ensure returns the entry for date, creating and persisting the default
// entry when none exists. Calling it again is a no-op.
func (s *Store) Ensure(ctx context.Context, date string) (models.DailyJournal, error) {
	if !utils.ValidDate(date) {
		return models.DailyJournal{}, errors.NewValidationError("date", date, "expected YYYY-MM-DD")
	}

	s.mu.Lock()
	j, ok := s.journals[date]
	if !ok {
		j = journal.NewDailyJournal(date)
		s.journals[date] = j
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	return journal.Clone(j), nil
}

// Put replaces the entry for j.Date and persists.
func (s *Store) Put(ctx context.Context, j models.DailyJournal) error {
	if err := validateEntry(j.Date, j); err != nil {
		return err
	}
	j = journal.Clone(j)

	s.mu.Lock()
	s.journals[j.Date] = j
	s.persistLocked(ctx)
	s.mu.Unlock()

	return nil
}

// Update applies fn to the entry for date (created if absent) and stores the
// result atomically with respect to other store calls.
func (s *Store) Update(ctx context.Context, date string, fn func(models.DailyJournal) (models.DailyJournal, error)) (models.DailyJournal, error) {
	if !utils.ValidDate(date) {
		return models.DailyJournal{}, errors.NewValidationError("date", date, "expected YYYY-MM-DD")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.journals[date]
	if !ok {
		current = journal.NewDailyJournal(date)
	}
	next, err := fn(journal.Clone(current))
	if err != nil {
		return models.DailyJournal{}, err
	}
	next.Date = date
	if err := validateEntry(date, next); err != nil {
		return models.DailyJournal{}, err
	}
	next = journal.Clone(next)
	s.journals[date] = next
	s.persistLocked(ctx)

	return journal.Clone(next), nil
}

// All returns a copy of every entry in no particular order.
func (s *Store) All() []models.DailyJournal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DailyJournal, 0, len(s.journals))
	for _, j := range s.journals {
		out = append(out, journal.Clone(j))
	}
	return out
}

// Dates returns every stored date, ascending.
func (s *Store) Dates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.journals))
	for d := range s.journals {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Len returns the number of stored days.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.journals)
}

// Snapshot serializes the whole store as a JSON object keyed by date.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.journals)
}

// Revert replaces the journals with the snapshot saved before the latest
// write and persists it. The revert is itself a write, so calling Revert
// twice returns to where it started. Backends without history return
// ErrNoHistory.
func (s *Store) Revert(ctx context.Context) (int, error) {
	h, ok := s.kv.(Historian)
	if !ok {
		return 0, errors.ErrNoHistory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := h.Previous(ctx, JournalsKey, 1)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.ErrNoHistory
	}
	journals, err := decode(data)
	if err != nil {
		return 0, err
	}

	s.journals = journals
	s.persistLocked(ctx)
	s.logger.Info().Int("days", len(journals)).Msg("Journals reverted to previous snapshot")
	return len(journals), nil
}

// SavedAt reports when the journals were last written, if the backend
// tracks it.
func (s *Store) SavedAt(ctx context.Context) (time.Time, bool) {
	h, ok := s.kv.(Historian)
	if !ok {
		return time.Time{}, false
	}
	t := h.UpdatedAt(ctx, JournalsKey)
	return t, !t.IsZero()
}

// ============================================================================
// Preference Methods
// ============================================================================

// Language returns the persisted UI language tag.
func (s *Store) Language(ctx context.Context) (string, bool) {
	if s.kv == nil {
		return "", false
	}
	data, ok, err := s.kv.Get(ctx, LanguageKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read language preference")
		return "", false
	}
	if !ok {
		return "", false
	}
	// Stored either as a bare tag or as a JSON string.
	var tag string
	if json.Unmarshal(data, &tag) == nil {
		return tag, tag != ""
	}
	return string(data), len(data) > 0
}

// SetLanguage persists the UI language tag.
func (s *Store) SetLanguage(ctx context.Context, tag string) error {
	if s.kv == nil {
		return nil
	}
	err := utils.Retry(ctx, s.retry, func() error {
		return s.kv.Set(ctx, LanguageKey, []byte(tag))
	})
	if err != nil {
		return errors.Wrap(err, "failed to save language")
	}
	return nil
}

// persistLocked writes the snapshot. Write failures are logged rather than
// returned so the in-memory state stays usable.
func (s *Store) persistLocked(ctx context.Context) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(s.journals)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode journals")
		return
	}
	err = utils.Retry(ctx, s.retry, func() error {
		return s.kv.Set(ctx, JournalsKey, data)
	})
	if err != nil {
		s.logger.Error().Err(err).Int("bytes", len(data)).Msg("Failed to persist journals")
		return
	}
	s.logger.Debug().Int("days", len(s.journals)).Int("bytes", len(data)).Msg("Journals persisted")

	if h, ok := s.kv.(Historian); ok {
		if _, err := h.PruneHistory(ctx, JournalsKey, HistoryDepth); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to prune journal history")
		}
	}
}

// ============================================================================
// Decoding
// ============================================================================

func decode(data []byte) (models.Journals, error) {
	var raw map[string]models.DailyJournal
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewCorruptStateError(JournalsKey, "not a journal object", err)
	}
	if raw == nil {
		return nil, errors.NewCorruptStateError(JournalsKey, "snapshot is null", nil)
	}

	journals := make(models.Journals, len(raw))
	for key, j := range raw {
		if j.Trades == nil {
			j.Trades = []models.Trade{}
		}
		if err := validateEntry(key, j); err != nil {
			return nil, errors.NewCorruptStateError(JournalsKey, fmt.Sprintf("entry %q", key), err)
		}
		journals[key] = j
	}
	return journals, nil
}

func validateEntry(key string, j models.DailyJournal) error {
	if !utils.ValidDate(key) {
		return errors.NewValidationError("date", key, "expected YYYY-MM-DD")
	}
	if j.Date != key {
		return errors.NewValidationError("date", j.Date, fmt.Sprintf("does not match key %s", key))
	}
	if !j.Emotion.Valid() {
		return errors.NewValidationError("emotion", j.Emotion, "unknown emotion")
	}
	if j.DisciplineScore < journal.MinDisciplineScore || j.DisciplineScore > journal.MaxDisciplineScore {
		return errors.NewValidationError("disciplineScore", j.DisciplineScore, "must be between 1 and 10")
	}
	ids := make(map[string]bool, len(j.Trades))
	for i, t := range j.Trades {
		if t.ID == "" {
			return errors.NewValidationError(fmt.Sprintf("trades[%d].id", i), t.ID, "trade id is required")
		}
		if ids[t.ID] {
			return errors.NewValidationError(fmt.Sprintf("trades[%d].id", i), t.ID, "duplicate trade id")
		}
		ids[t.ID] = true
		if !t.Direction.Valid() {
			return errors.NewValidationError(fmt.Sprintf("trades[%d].direction", i), t.Direction, "must be Buy or Sell")
		}
	}
	return nil
}

func cloneAll(src models.Journals) models.Journals {
	out := make(models.Journals, len(src))
	for k, j := range src {
		out[k] = journal.Clone(j)
	}
	return out
}
