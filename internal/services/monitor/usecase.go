package monitor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

type Invalidator interface {
	Invalidate()
}

// Usecase is one evaluation pass of the status engine.
type Usecase struct {
	Repo   check.Repo
	Sink   check.StatusSink
	Events check.Events
	Cache  Invalidator
	Log    *zap.Logger

	clk func() time.Time
}

func NewUC(repo check.Repo, sink check.StatusSink, events check.Events, cache Invalidator, log *zap.Logger, clk func() time.Time) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{Repo: repo, Sink: sink, Events: events, Cache: cache, Log: log, clk: clk}
}

// Tick evaluates every non-maintenance check against its deadline and marks
// overdue ones down. Each check is handled independently: a storage failure
// on one is logged and the rest of the batch still runs. Re-running Tick
// against an unchanged store is a no-op.
func (u *Usecase) Tick(ctx context.Context) (evaluated, marked, errs int) {
	tr := otel.Tracer("monitor.uc")
	ctx, span := tr.Start(ctx, "monitor.tick")
	defer span.End()

	now := u.clk()

	list, err := u.Repo.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		u.Log.Warn("list active checks", zap.Error(err))
		return 0, 0, 1
	}

	for _, c := range list {
		evaluated++
		if c.Status == check.StatusDown || !Overdue(c, now) {
			continue
		}
		if u.markDown(ctx, c.ID, now) {
			marked++
		} else {
			errs++
		}
	}

	span.SetAttributes(
		attribute.Int("batch.evaluated", evaluated),
		attribute.Int("batch.marked_down", marked),
		attribute.Int("batch.errors", errs),
	)
	return evaluated, marked, errs
}

// markDown re-checks the deadline inside the row transaction: the listing
// above is a stale snapshot, and a ping or maintenance toggle may have
// landed since. The transition happens only if the locked row is still
// overdue, not down, and not in maintenance.
func (u *Usecase) markDown(ctx context.Context, id int64, now time.Time) bool {
	var (
		old        check.Status
		transition bool
	)
	updated, err := u.Repo.UpdateByID(ctx, id, func(c *check.Check) (bool, error) {
		if c.Status == check.StatusMaintenance || c.Status == check.StatusDown || !Overdue(c, now) {
			return false, nil
		}
		old = c.Status
		c.Status = check.StatusDown
		c.ConsecutiveDowns++
		transition = true
		return true, nil
	})
	if err != nil {
		u.Log.Warn("mark down", zap.Int64("check_id", id), zap.Error(err))
		return false
	}
	if !transition {
		return true
	}

	u.Log.Info("check down",
		zap.Int64("check_id", updated.ID),
		zap.String("name", updated.Name),
		zap.String("prev_status", string(old)),
		zap.Int("consecutive_downs", updated.ConsecutiveDowns),
	)
	if u.Sink != nil {
		u.Sink.UpdateStatus(updated)
	}
	if u.Cache != nil {
		u.Cache.Invalidate()
	}
	if u.Events != nil {
		if err := u.Events.StatusChanged(ctx, updated, old); err != nil {
			u.Log.Warn("publish status change", zap.Int64("check_id", updated.ID), zap.Error(err))
		}
	}
	return true
}
