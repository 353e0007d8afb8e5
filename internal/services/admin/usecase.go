// Package admin holds the trusted mutations: create, delete, maintenance
// toggle, and explicit failure reports. Authorization happens outside this
// package; callers are assumed trusted.
package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
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

func (u *Usecase) invalidate() {
	if u.Cache != nil {
		u.Cache.Invalidate()
	}
}

func (u *Usecase) publish(ctx context.Context, c *check.Check, old check.Status) {
	if u.Events == nil || c.Status == old {
		return
	}
	if err := u.Events.StatusChanged(ctx, c, old); err != nil {
		u.Log.Warn("publish status change", zap.Int64("check_id", c.ID), zap.Error(err))
	}
}

// Create registers a new check with a fresh unguessable token. The check
// starts in status new with no ping history.
func (u *Usecase) Create(ctx context.Context, name, schedule, grace string) (*check.Check, error) {
	c := &check.Check{
		Token:     uuid.NewString(),
		Name:      name,
		Schedule:  schedule,
		Grace:     grace,
		Status:    check.StatusNew,
		CreatedAt: u.clk(),
	}
	if err := u.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	if u.Sink != nil {
		u.Sink.UpdateStatus(c)
	}
	u.invalidate()
	return c, nil
}

// Delete removes the check. A repeated delete reports ErrNotFound.
func (u *Usecase) Delete(ctx context.Context, token string) error {
	c, err := u.Repo.Delete(ctx, token)
	if err != nil {
		return err
	}
	if u.Sink != nil {
		u.Sink.RemoveStatus(c)
	}
	u.invalidate()
	return nil
}

// ToggleMaintenance flips the maintenance state. Entering maintenance
// freezes the record as-is; leaving it resumes at up when the check has
// ping history and at new otherwise — maintenance never fabricates one.
func (u *Usecase) ToggleMaintenance(ctx context.Context, token string) (*check.Check, error) {
	var old check.Status
	updated, err := u.Repo.UpdateByToken(ctx, token, func(c *check.Check) (bool, error) {
		old = c.Status
		if c.Status == check.StatusMaintenance {
			if c.LastPingAt != nil {
				c.Status = check.StatusUp
			} else {
				c.Status = check.StatusNew
			}
		} else {
			c.Status = check.StatusMaintenance
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if u.Sink != nil {
		u.Sink.UpdateStatus(updated)
	}
	u.invalidate()
	u.publish(ctx, updated, old)
	return updated, nil
}

// RecordFailure marks the check failed on an operator's say-so. Unlike a
// passive ping it applies in every state, maintenance included.
func (u *Usecase) RecordFailure(ctx context.Context, token string, reason *string) (*check.Check, error) {
	var old check.Status
	now := u.clk()
	updated, err := u.Repo.UpdateByToken(ctx, token, func(c *check.Check) (bool, error) {
		old = c.Status
		c.Status = check.StatusFailed
		c.LastPingAt = &now
		c.LastError = reason
		c.ConsecutiveDowns = 0
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if u.Sink != nil {
		u.Sink.UpdateStatus(updated)
	}
	u.invalidate()
	u.publish(ctx, updated, old)
	return updated, nil
}
