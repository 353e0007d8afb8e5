package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCheck(status check.Status) *check.Check {
	return &check.Check{
		ID:        1,
		Token:     "tok",
		Name:      "backup",
		Schedule:  "10m",
		Grace:     "2m",
		Status:    status,
		CreatedAt: t0,
	}
}

func TestOverdueDeadlineBoundary(t *testing.T) {
	c := newCheck(check.StatusNew)
	deadline := t0.Add(12 * time.Minute)

	assert.False(t, Overdue(c, deadline), "the deadline instant itself is on time")
	assert.True(t, Overdue(c, deadline.Add(time.Nanosecond)))
}

func TestOverdueReferenceTime(t *testing.T) {
	t.Run("new uses created_at", func(t *testing.T) {
		c := newCheck(check.StatusNew)
		assert.False(t, Overdue(c, t0.Add(11*time.Minute+59*time.Second)))
		assert.True(t, Overdue(c, t0.Add(12*time.Minute+time.Second)))
	})

	t.Run("up uses last_ping_at", func(t *testing.T) {
		c := newCheck(check.StatusUp)
		ping := t0.Add(time.Hour)
		c.LastPingAt = &ping
		assert.False(t, Overdue(c, ping.Add(12*time.Minute)))
		assert.True(t, Overdue(c, ping.Add(12*time.Minute+time.Second)))
	})

	t.Run("missing reference is never overdue", func(t *testing.T) {
		c := newCheck(check.StatusUp)
		c.LastPingAt = nil
		assert.False(t, Overdue(c, t0.Add(1000*time.Hour)))

		c = newCheck(check.StatusNew)
		c.CreatedAt = time.Time{}
		assert.False(t, Overdue(c, t0.Add(1000*time.Hour)))
	})
}

func TestOverdueMalformedScheduleFailsLoud(t *testing.T) {
	// A broken schedule collapses the deadline to the reference time, so
	// the check is overdue as soon as any time has passed.
	c := newCheck(check.StatusNew)
	c.Schedule = "often"
	c.Grace = ""
	assert.False(t, Overdue(c, t0))
	assert.True(t, Overdue(c, t0.Add(time.Second)))
}
