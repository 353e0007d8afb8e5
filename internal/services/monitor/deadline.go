package monitor

import (
	"time"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
	"github.com/pulsewatch/pulsewatch/internal/interval"
)

// Overdue reports whether c has missed its deadline as of now.
//
// The reference time is created_at for a check that has never pinged
// (status new) and last_ping_at otherwise. A check with no usable reference
// time is never overdue: an incompletely initialized record must not be
// auto-marked down. The deadline instant itself is still on time; only
// now strictly after the deadline is overdue.
func Overdue(c *check.Check, now time.Time) bool {
	var ref time.Time
	if c.Status == check.StatusNew {
		ref = c.CreatedAt
	} else if c.LastPingAt != nil {
		ref = *c.LastPingAt
	}
	if ref.IsZero() {
		return false
	}
	deadline := ref.Add(interval.Parse(c.Schedule) + interval.Parse(c.Grace))
	return now.After(deadline)
}
