package monitor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

type RunnerConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

// Runner drives the status engine on a fixed cadence, with one immediate
// pass at startup. It has no failure mode of its own: a bad cycle is
// retried by the next one.
type Runner struct {
	Log *zap.Logger
	UC  *Usecase
	Cfg RunnerConfig

	mEvaluated prometheus.Counter
	mMarked    prometheus.Counter
	mErr       prometheus.Counter
	mLoopDur   prometheus.Histogram
}

func NewRunner(log *zap.Logger, uc *Usecase, cfg RunnerConfig) *Runner {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Minute
	}
	return &Runner{
		Log: log,
		UC:  uc,
		Cfg: cfg,
		mEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monitor_checks_evaluated_total", Help: "Checks evaluated against their deadline",
		}),
		mMarked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monitor_checks_marked_down_total", Help: "Down transitions issued",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monitor_errors_total", Help: "Errors in evaluation loop",
		}),
		mLoopDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "monitor_loop_duration_seconds", Help: "Evaluation pass duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	evaluated, marked, errs := r.UC.Tick(ctx)
	r.mEvaluated.Add(float64(evaluated))
	r.mMarked.Add(float64(marked))
	if errs > 0 {
		r.mErr.Add(float64(errs))
	}
	if evaluated > 0 {
		r.Log.Debug("evaluation pass",
			zap.Int("evaluated", evaluated),
			zap.Int("marked_down", marked),
			zap.Int("errors", errs),
		)
	}
	r.mLoopDur.Observe(time.Since(start).Seconds())
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Cfg.Tick)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
