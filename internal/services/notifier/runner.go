package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type RunnerConfig struct {
	CronSpec string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// Runner fires on an operator-configured cron cadence, builds a summary
// from a list snapshot, and hands it off. No store lock is held while the
// delivery round-trips; the snapshot is taken first.
type Runner struct {
	Log   *zap.Logger
	Src   Lister
	Out   Deliverer
	Cfg   RunnerConfig
	clk   func() time.Time
	sched *cron.Cron

	mFired     prometheus.Counter
	mDelivered prometheus.Counter
	mErr       prometheus.Counter
}

func NewRunner(log *zap.Logger, src Lister, out Deliverer, cfg RunnerConfig, clk func() time.Time) (*Runner, error) {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	loc := time.UTC
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
	}
	r := &Runner{
		Log:   log,
		Src:   src,
		Out:   out,
		Cfg:   cfg,
		clk:   clk,
		sched: cron.New(cron.WithLocation(loc)),
		mFired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_firings_total", Help: "Scheduled summary firings",
		}),
		mDelivered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_summaries_delivered_total", Help: "Summaries delivered",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "notifier_errors_total", Help: "Errors in notifier loop",
		}),
	}
	return r, nil
}

// Fire runs one summary cycle. Exposed for the cron callback and tests.
func (r *Runner) Fire(ctx context.Context) {
	r.mFired.Inc()

	list, err := r.Src.List(ctx)
	if err != nil {
		r.mErr.Inc()
		r.Log.Warn("load checks for summary", zap.Error(err))
		return
	}
	s := BuildSummary(list, r.clk())

	if err := r.Out.Deliver(ctx, s); err != nil {
		r.mErr.Inc()
		r.Log.Warn("deliver summary", zap.Error(err), zap.Int("total", s.Total), zap.Int("down", len(s.Down)))
		return
	}
	r.mDelivered.Inc()
	r.Log.Debug("summary delivered", zap.Int("total", s.Total), zap.Int("down", len(s.Down)))
}

// Run blocks until ctx is canceled, firing on the configured cron spec.
func (r *Runner) Run(ctx context.Context) error {
	if _, err := r.sched.AddFunc(r.Cfg.CronSpec, func() { r.Fire(ctx) }); err != nil {
		return fmt.Errorf("cron spec %q: %w", r.Cfg.CronSpec, err)
	}
	r.sched.Start()
	r.Log.Info("notifier started", zap.String("cron", r.Cfg.CronSpec), zap.String("tz", r.Cfg.Timezone))

	<-ctx.Done()
	stopCtx := r.sched.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}
