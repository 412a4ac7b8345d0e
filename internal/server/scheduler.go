package server

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"trademind/internal/app"
)

// AdviceRefresher re-asks the advisor on a schedule so the dashboard advice
// stays current while the server runs. Runs may overlap.
type AdviceRefresher struct {
	cron    *cron.Cron
	session *app.Session
	timeout time.Duration
	log     zerolog.Logger
}

// NewAdviceRefresher creates a refresher; schedule uses the standard five
// field cron syntax or descriptors such as "@every 15m".
func NewAdviceRefresher(session *app.Session, schedule string, log zerolog.Logger) (*AdviceRefresher, error) {
	r := &AdviceRefresher{
		cron:    cron.New(),
		session: session,
		timeout: 60 * time.Second,
		log:     log.With().Str("component", "scheduler").Logger(),
	}

	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, err
	}

	r.log.Info().
		Str("schedule", schedule).
		Str("job", "advice_refresh").
		Msg("Job registered")

	return r, nil
}

func (r *AdviceRefresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.log.Debug().Str("job", "advice_refresh").Msg("Running job")
	advice := r.session.Advice(ctx)
	r.log.Debug().Str("job", "advice_refresh").Int("chars", len(advice)).Msg("Job completed")
}

// Start starts the scheduler.
func (r *AdviceRefresher) Start() {
	r.cron.Start()
	r.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for a running job.
func (r *AdviceRefresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info().Msg("Scheduler stopped")
}
