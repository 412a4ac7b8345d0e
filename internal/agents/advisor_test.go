package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"trademind/internal/journal"
	"trademind/internal/metrics"
	"trademind/internal/models"
)

type fakeClient struct {
	text    string
	sources []models.Source
	err     error
	prompts []Prompt
}

func (f *fakeClient) Provider() string { return "fake" }

func (f *fakeClient) Generate(_ context.Context, p Prompt) (Completion, error) {
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return Completion{}, f.err
	}
	return Completion{Text: f.text, Sources: f.sources}, nil
}

func newAdvisor(c LLMClient) *Advisor {
	return NewAdvisor(c, AdvisorConfig{}, zerolog.Nop())
}

func seedDays() []models.DailyJournal {
	var out []models.DailyJournal
	for _, j := range journal.Seed() {
		out = append(out, j)
	}
	return out
}

func TestAdvisor_FallbacksOnFailure(t *testing.T) {
	ctx := context.Background()
	failing := &fakeClient{err: errors.New("503 service unavailable")}
	a := newAdvisor(failing)

	before := testutil.ToFloat64(metrics.AdvisoryCalls(OpAdvice, "fake", metrics.OutcomeFallback))

	if got := a.Advice(ctx, seedDays()); got != AdviceError {
		t.Errorf("Advice = %q, want %q", got, AdviceError)
	}
	macro := a.MacroContext(ctx)
	if macro.Text != MacroError || len(macro.Sources) != 0 || !macro.Fallback {
		t.Errorf("MacroContext = %+v", macro)
	}
	scan := a.ScanResults(ctx, "Momentum", []string{"RSI > 50"})
	if scan.Text != ScanError || len(scan.Sources) != 0 || !scan.Fallback {
		t.Errorf("ScanResults = %+v", scan)
	}
	if len(failing.prompts) != 3 {
		t.Errorf("made %d calls, want exactly one per operation", len(failing.prompts))
	}

	after := testutil.ToFloat64(metrics.AdvisoryCalls(OpAdvice, "fake", metrics.OutcomeFallback))
	if after-before != 1 {
		t.Errorf("fallback counter moved by %v", after-before)
	}
}

func TestAdvisor_FallbacksOnEmptyResponse(t *testing.T) {
	ctx := context.Background()
	a := newAdvisor(&fakeClient{text: "  \n"})

	if got := a.Advice(ctx, nil); got != AdviceEmpty {
		t.Errorf("Advice = %q, want %q", got, AdviceEmpty)
	}
	if got := a.MacroContext(ctx); got.Text != MacroEmpty {
		t.Errorf("MacroContext = %q", got.Text)
	}
	if got := a.ScanResults(ctx, "Open", nil); got.Text != ScanEmpty {
		t.Errorf("ScanResults = %q", got.Text)
	}
}

func TestAdvisor_NoClientFallsBack(t *testing.T) {
	a := newAdvisor(nil)
	if a.Provider() != "none" {
		t.Errorf("Provider = %q", a.Provider())
	}
	if got := a.Advice(context.Background(), seedDays()); got != AdviceError {
		t.Errorf("Advice = %q", got)
	}
}

func TestAdvisor_Success(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		text:    "Sentiment: Bullish",
		sources: []models.Source{{Title: "Reuters", URL: "https://reuters.com/a"}},
	}
	a := newAdvisor(client)

	r := a.MacroContext(ctx)
	if r.Text != "Sentiment: Bullish" || r.Fallback || len(r.Sources) != 1 {
		t.Errorf("MacroContext = %+v", r)
	}
	p := client.prompts[0]
	if !p.WebSearch || p.Model != DefaultSearchModel {
		t.Errorf("macro prompt = %+v", p)
	}

	client.text = " Protect the open. "
	if got := a.Advice(ctx, seedDays()); got != "Protect the open." {
		t.Errorf("Advice = %q", got)
	}
	p = client.prompts[1]
	if p.WebSearch || !p.FastPath || p.Model != DefaultFastModel {
		t.Errorf("advice prompt = %+v", p)
	}
}

func TestAdvicePrompt_Context(t *testing.T) {
	client := &fakeClient{text: "ok"}
	newAdvisor(client).Advice(context.Background(), seedDays())

	text := client.prompts[0].Text
	for _, want := range []string{
		`"date":"2025-01-15","pnl":1250,"emotion":"Calm","discipline":9,"strategies":"Breakout, Trend Following"`,
		`"date":"2025-01-16","pnl":-1000,"emotion":"Frustrated","discipline":4,"strategies":"Scalp"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %s", want)
		}
	}
	if strings.Index(text, "2025-01-15") > strings.Index(text, "2025-01-16") {
		t.Error("days not in chronological order")
	}
}

func TestScanPrompt_JoinsRules(t *testing.T) {
	client := &fakeClient{text: "| A |"}
	newAdvisor(client).ScanResults(context.Background(), "Buy Signals", []string{"one", "two"})
	text := client.prompts[0].Text
	if !strings.Contains(text, `"Buy Signals"`) || !strings.Contains(text, "one\ntwo") {
		t.Errorf("prompt = %s", text)
	}
}

func TestRefineNotes(t *testing.T) {
	ctx := context.Background()

	client := &fakeClient{text: "**Execution review**"}
	a := newAdvisor(client)

	if got, ok := a.RefineNotes(ctx, "too short"); ok || got != "too short" {
		t.Errorf("short notes = %q, %v", got, ok)
	}
	if len(client.prompts) != 0 {
		t.Error("short notes must not call the backend")
	}

	notes := "Chased the open, sized too big."
	got, ok := a.RefineNotes(ctx, notes)
	if !ok || got != "**Execution review**" {
		t.Errorf("RefineNotes = %q, %v", got, ok)
	}
	if !strings.Contains(client.prompts[0].Text, notes) {
		t.Error("notes not quoted in prompt")
	}

	client.err = errors.New("boom")
	if got, ok := a.RefineNotes(ctx, notes); ok || got != notes {
		t.Errorf("failed refine = %q, %v", got, ok)
	}
}

func TestScanners(t *testing.T) {
	all := Scanners()
	if len(all) != 6 {
		t.Fatalf("%d scanners", len(all))
	}
	editable := 0
	for _, s := range all {
		if len(s.Rules) == 0 || len(s.Display) == 0 {
			t.Errorf("%s has no rules", s.ID)
		}
		if s.Editable {
			editable++
		}
	}
	if editable != 1 {
		t.Errorf("%d editable scanners, want only finviz", editable)
	}

	fv, err := FindScanner("FINVIZ")
	if err != nil {
		t.Fatal(err)
	}
	custom := fv.WithRules(ParseRules("Price > 10\n\n  RSI < 30  \n"))
	if len(custom.Rules) != 2 || custom.Rules[1] != "RSI < 30" {
		t.Errorf("custom rules = %q", custom.Rules)
	}

	mom, _ := FindScanner("momentum")
	if got := mom.WithRules([]string{"x"}); got.Rules[0] == "x" {
		t.Error("non-editable preset accepted custom rules")
	}

	if _, err := FindScanner("nope"); err == nil {
		t.Error("unknown scanner accepted")
	}
}
