package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errBackend = errors.New("backend down")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("test", cfg, zerolog.Nop())
	cb.SetClock(clock.now)
	return cb, clock
}

func fail(context.Context) error { return errBackend }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, Timeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, fail); !errors.Is(err, errBackend) {
			t.Fatalf("call %d: err = %v, want backend error", i, err)
		}
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("State() = %s, want OPEN", cb.State())
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("open circuit must not call the backend")
	}

	stats := cb.Stats()
	if stats.TotalRejected != 1 || stats.TotalFailures != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 2, Timeout: time.Minute})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)

	if cb.State() != CircuitClosed {
		t.Errorf("State() = %s, want CLOSED", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Minute})
	ctx := context.Background()

	var transitions []CircuitState
	cb.OnStateChange = func(_ string, s CircuitState) { transitions = append(transitions, s) }

	_ = cb.Execute(ctx, fail)
	clock.t = clock.t.Add(30 * time.Second)
	if err := cb.Execute(ctx, succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen during cooldown", err)
	}

	clock.t = clock.t.Add(31 * time.Second)
	if err := cb.Execute(ctx, fail); !errors.Is(err, errBackend) {
		t.Fatalf("probe err = %v", err)
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("failed probe: State() = %s, want OPEN", cb.State())
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("probe err = %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("State() = %s, want CLOSED", cb.State())
	}

	want := []CircuitState{CircuitOpen, CircuitHalfOpen, CircuitOpen, CircuitHalfOpen, CircuitClosed}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transitions[%d] = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_CancelledContextNotCounted(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("State() = %s, want CLOSED", cb.State())
	}
}

func TestExecuteWithResult(t *testing.T) {
	cb, _ := newTestBreaker(DefaultCircuitBreakerConfig())

	v, err := ExecuteWithResult(cb, context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Errorf("ExecuteWithResult() = %q, %v", v, err)
	}

	v, err = ExecuteWithResult(cb, context.Background(), func(context.Context) (string, error) {
		return "partial", errBackend
	})
	if err == nil || v != "" {
		t.Errorf("failed call returned %q, %v; want zero value and error", v, err)
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Hour})
	_ = cb.Execute(context.Background(), fail)
	cb.Reset()
	if cb.State() != CircuitClosed {
		t.Errorf("State() = %s, want CLOSED", cb.State())
	}
	if cb.Stats().FailureRate() != 100 {
		t.Errorf("FailureRate() = %v, want 100", cb.Stats().FailureRate())
	}
}
