package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

// StatusChange is the wire shape of a status transition event.
type StatusChange struct {
	CheckID   int64        `json:"check_id"`
	Token     string       `json:"token"`
	Name      string       `json:"name"`
	OldStatus check.Status `json:"old_status"`
	NewStatus check.Status `json:"new_status"`
	At        time.Time    `json:"at"`
}

type CheckEvents struct {
	p *Producer
}

func NewCheckEvents(p *Producer) *CheckEvents { return &CheckEvents{p: p} }

var _ check.Events = (*CheckEvents)(nil)

func (e *CheckEvents) StatusChanged(ctx context.Context, c *check.Check, old check.Status) error {
	value, err := json.Marshal(StatusChange{
		CheckID:   c.ID,
		Token:     c.Token,
		Name:      c.Name,
		OldStatus: old,
		NewStatus: c.Status,
		At:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return e.p.Publish(ctx, KeyFromInt64(c.ID), value)
}

// NopEvents is used when the event stream is disabled in config.
type NopEvents struct{}

func (NopEvents) StatusChanged(context.Context, *check.Check, check.Status) error { return nil }
