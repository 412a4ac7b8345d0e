package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"trademind/internal/agents"
	"trademind/internal/config"
	"trademind/internal/i18n"
	"trademind/internal/journal"
	"trademind/internal/metrics"
	"trademind/internal/models"
	"trademind/internal/resilience"
	"trademind/internal/security"
	"trademind/internal/stats"
	"trademind/internal/store"
)

// Open builds a Session from configuration. The returned close function
// releases the storage backend.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Session, func() error, error) {
	kv, err := OpenKV(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("backend", cfg.Storage.Backend).Str("path", cfg.StoragePath()).Msg("Storage opened")

	st := store.Load(ctx, kv, journal.Seed(), store.WithLogger(logger))

	table, err := i18n.New()
	if err != nil {
		kv.Close()
		return nil, nil, fmt.Errorf("loading locales: %w", err)
	}

	advisor := agents.NewAdvisor(NewLLMClient(cfg, logger), agents.AdvisorConfig{
		FastModel:   cfg.Advisor.Model,
		SearchModel: cfg.Advisor.SearchModel,
	}, logger)

	opts := OptionsFromConfig(cfg)
	opts.Logger = logger

	return NewSession(ctx, st, advisor, table, opts), kv.Close, nil
}

// OpenKV opens the configured key-value backend.
func OpenKV(cfg *config.Config) (store.KV, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return store.NewMemoryKV(), nil
	case config.StorageFile:
		kv, err := store.NewFileKV(cfg.StoragePath())
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		return kv, nil
	default:
		kv, err := store.NewSQLiteKV(cfg.StoragePath())
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return kv, nil
	}
}

// NewLLMClient returns the configured backend, or nil when no API key is set.
func NewLLMClient(cfg *config.Config, logger zerolog.Logger) agents.LLMClient {
	key := cfg.APIKey()
	if key == "" {
		logger.Warn().Str("provider", cfg.Advisor.Provider).Msg("No API key configured, advisory features will use fallback text")
		return nil
	}
	var client agents.LLMClient
	switch cfg.Advisor.Provider {
	case config.ProviderOpenAI:
		security.Str(logger.Debug(), "api_key", key).Str("model", cfg.Advisor.Model).Msg("OpenAI client initialized")
		client = agents.NewOpenAIClient(key, cfg.Advisor.Model)
	default:
		security.Str(logger.Debug(), "api_key", key).Str("model", cfg.Advisor.Model).Msg("Gemini client initialized")
		client = agents.NewGeminiClient(key, cfg.Advisor.Model)
	}

	cb := resilience.NewCircuitBreaker(client.Provider(), resilience.DefaultCircuitBreakerConfig(), logger)
	cb.OnStateChange = func(name string, state resilience.CircuitState) {
		metrics.SetCircuitOpen(name, state != resilience.CircuitClosed)
	}

	var limiter *rate.Limiter
	if n := cfg.Advisor.RequestsPerMinute; n > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), min(n, 5))
	}
	return agents.NewGuardedClient(client, cb, limiter)
}

// OptionsFromConfig maps the [journal] and [ui] sections onto session options.
func OptionsFromConfig(cfg *config.Config) Options {
	baseline := cfg.Journal.Baseline
	opts := Options{
		Baseline:      &baseline,
		FeedLimit:     cfg.Journal.RecentTrades,
		TimeframeMode: cfg.Journal.TimeframeMode,
		Language:      models.Language(cfg.UI.Language),
		Now:           time.Now,
	}
	if cfg.Journal.Jitter {
		opts.Jitter = stats.NewRandomJitter(rand.New(rand.NewSource(time.Now().UnixNano())))
	} else {
		opts.Jitter = stats.NoJitter{}
	}
	return opts
}
