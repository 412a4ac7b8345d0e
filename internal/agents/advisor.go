package agents

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"trademind/internal/errors"
	"trademind/internal/logging"
	"trademind/internal/metrics"
	"trademind/internal/models"
	"trademind/internal/resilience"
)

// Operation names used in logs and metrics.
const (
	OpAdvice = "advice"
	OpMacro  = "macro"
	OpScan   = "scan"
	OpRefine = "refine_notes"
)

// InitialAdvice is shown before the first advice call completes.
const InitialAdvice = "Analyze your psychology to find your edge."

// Fallback texts. The Empty variants replace a successful but blank
// response; the Error variants replace a failed call.
const (
	AdviceEmpty = "La discipline à 9:30 définit ta rentabilité sur l'Or."
	AdviceError = "Le marché ne punit pas tes erreurs, il punit ton manque de plan."
	MacroEmpty  = "Analyse indisponible. Surveillez la volatilité à 9:30."
	MacroError  = "Erreur de connexion au flux macro."
	ScanEmpty   = "Aucun setup trouvé."
	ScanError   = "Erreur scanner."
)

// MinRefineLength is the shortest note the refiner will rewrite.
const MinRefineLength = 10

// Default model names.
const (
	DefaultFastModel   = "gemini-3-flash-preview"
	DefaultSearchModel = "gemini-3-pro-preview"
)

// Report is a search-grounded advisory response.
type Report struct {
	Text     string          `json:"text"`
	Sources  []models.Source `json:"sources"`
	Fallback bool            `json:"fallback"`
}

// AdvisorConfig selects the models per call type.
type AdvisorConfig struct {
	FastModel   string
	SearchModel string
}

// Advisor wraps an LLMClient with prompts and fallbacks. It never returns an
// error to its caller: every failure becomes a fixed fallback text.
type Advisor struct {
	client LLMClient
	cfg    AdvisorConfig
	logger zerolog.Logger
}

// NewAdvisor creates an Advisor. A nil client makes every call fall back,
// which is how a missing API key behaves.
func NewAdvisor(client LLMClient, cfg AdvisorConfig, logger zerolog.Logger) *Advisor {
	if cfg.FastModel == "" {
		cfg.FastModel = DefaultFastModel
	}
	if cfg.SearchModel == "" {
		cfg.SearchModel = DefaultSearchModel
	}
	return &Advisor{
		client: client,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "advisor"),
	}
}

// Provider names the backend, or "none" when no client is configured.
func (a *Advisor) Provider() string {
	if a.client == nil {
		return "none"
	}
	return a.client.Provider()
}

// Circuit returns the breaker statistics when the client is guarded.
func (a *Advisor) Circuit() (resilience.CircuitBreakerStats, bool) {
	g, ok := a.client.(*GuardedClient)
	if !ok {
		return resilience.CircuitBreakerStats{}, false
	}
	return g.Breaker().Stats(), true
}

// Advice asks for a one-sentence coaching tip over the given days.
func (a *Advisor) Advice(ctx context.Context, journals []models.DailyJournal) string {
	c, err := a.call(ctx, OpAdvice, Prompt{
		Text:     advicePrompt(journals),
		Model:    a.cfg.FastModel,
		FastPath: true,
	})
	if err != nil {
		return AdviceError
	}
	if isBlank(c.Text) {
		return AdviceEmpty
	}
	return strings.TrimSpace(c.Text)
}

// MacroContext asks for a search-grounded gold macro briefing.
func (a *Advisor) MacroContext(ctx context.Context) Report {
	return a.report(ctx, OpMacro, Prompt{
		Text:      macroPrompt,
		Model:     a.cfg.SearchModel,
		WebSearch: true,
	}, MacroEmpty, MacroError)
}

// ScanResults runs a named scanner with its rule list.
func (a *Advisor) ScanResults(ctx context.Context, name string, rules []string) Report {
	return a.report(ctx, OpScan, Prompt{
		Text:      scanPrompt(name, rules),
		Model:     a.cfg.SearchModel,
		WebSearch: true,
	}, ScanEmpty, ScanError)
}

// RefineNotes rewrites notes in a professional register. It returns the
// original notes and false when they are too short, the call fails, or the
// response is blank.
func (a *Advisor) RefineNotes(ctx context.Context, notes string) (string, bool) {
	if utf8.RuneCountInString(notes) < MinRefineLength {
		return notes, false
	}
	c, err := a.call(ctx, OpRefine, Prompt{
		Text:  refinePrompt(notes),
		Model: a.cfg.FastModel,
	})
	if err != nil || isBlank(c.Text) {
		return notes, false
	}
	return c.Text, true
}

func (a *Advisor) report(ctx context.Context, op string, p Prompt, empty, failed string) Report {
	c, err := a.call(ctx, op, p)
	if err != nil {
		return Report{Text: failed, Sources: []models.Source{}, Fallback: true}
	}
	sources := c.Sources
	if sources == nil {
		sources = []models.Source{}
	}
	if isBlank(c.Text) {
		return Report{Text: empty, Sources: sources, Fallback: true}
	}
	return Report{Text: c.Text, Sources: sources}
}

// call performs exactly one request; there are no retries.
func (a *Advisor) call(ctx context.Context, op string, p Prompt) (Completion, error) {
	provider := a.Provider()
	start := time.Now()

	var (
		c   Completion
		err error
	)
	if a.client == nil {
		err = errors.ErrNoCredentials
	} else {
		c, err = a.client.Generate(ctx, p)
	}
	elapsed := time.Since(start)

	if err != nil {
		err = errors.NewAdvisoryRequestError(provider, op, err)
		logging.LogAdvisoryCall(a.logger, provider, op, elapsed, err)
		metrics.RecordAdvisoryCall(op, provider, metrics.OutcomeFallback, elapsed)
		return Completion{}, err
	}

	outcome := metrics.OutcomeOK
	if isBlank(c.Text) {
		outcome = metrics.OutcomeEmpty
	}
	logging.LogAdvisoryCall(a.logger, provider, op, elapsed, nil)
	metrics.RecordAdvisoryCall(op, provider, outcome, elapsed)
	return c, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
