// Package pings records inbound liveness signals.
package pings

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

// Outcome distinguishes the caller-visible results of recording a ping.
type Outcome int

const (
	// Accepted: the ping was written and the check is up.
	Accepted Outcome = iota
	// MaintenanceNoop: the ping was acknowledged but the check is in
	// maintenance, so nothing was written.
	MaintenanceNoop
)

type Invalidator interface {
	Invalidate()
}

type Usecase struct {
	Repo   check.Repo
	Sink   check.StatusSink
	Events check.Events
	Cache  Invalidator
	Log    *zap.Logger

	clk func() time.Time
}

func New(repo check.Repo, sink check.StatusSink, events check.Events, cache Invalidator, log *zap.Logger, clk func() time.Time) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{Repo: repo, Sink: sink, Events: events, Cache: cache, Log: log, clk: clk}
}

// Record accepts a liveness signal for the check identified by token.
// The maintenance guard and the up-transition run inside the same row
// transaction, so a concurrent maintenance toggle or engine evaluation
// either fully precedes or fully follows this write.
func (u *Usecase) Record(ctx context.Context, token string, durationMS *int64) (*check.Check, Outcome, error) {
	var (
		old     check.Status
		outcome = MaintenanceNoop
	)
	now := u.clk()

	updated, err := u.Repo.UpdateByToken(ctx, token, func(c *check.Check) (bool, error) {
		if c.Status == check.StatusMaintenance {
			return false, nil
		}
		old = c.Status
		c.Status = check.StatusUp
		c.LastPingAt = &now
		c.LastPingDurationMS = durationMS
		c.ConsecutiveDowns = 0
		c.LastError = nil
		outcome = Accepted
		return true, nil
	})
	if err != nil {
		return nil, 0, err
	}
	if outcome == MaintenanceNoop {
		return updated, MaintenanceNoop, nil
	}

	if u.Sink != nil {
		u.Sink.UpdateStatus(updated)
	}
	if u.Cache != nil {
		u.Cache.Invalidate()
	}
	if old != check.StatusUp && u.Events != nil {
		if err := u.Events.StatusChanged(ctx, updated, old); err != nil {
			u.Log.Warn("publish status change", zap.Int64("check_id", updated.ID), zap.Error(err))
		}
	}
	return updated, Accepted, nil
}
