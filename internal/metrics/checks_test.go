package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

func TestUpdateAndRemoveStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChecks(reg)

	ping := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dur := int64(250)
	c := &check.Check{
		Token:              "tok",
		Name:               "backup",
		Status:             check.StatusDown,
		LastPingAt:         &ping,
		LastPingDurationMS: &dur,
		ConsecutiveDowns:   2,
	}

	m.UpdateStatus(c)
	l := prometheus.Labels{"token": "tok", "name": "backup"}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.status.With(l)))
	assert.Equal(t, float64(ping.Unix()), testutil.ToFloat64(m.lastPing.With(l)))
	assert.Equal(t, 250.0, testutil.ToFloat64(m.duration.With(l)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.downs.With(l)))

	// Unknown status maps to the default code instead of panicking.
	c.Status = check.Status("quarantined")
	m.UpdateStatus(c)
	assert.Equal(t, -1.0, testutil.ToFloat64(m.status.With(l)))

	m.RemoveStatus(c)
	assert.Zero(t, testutil.CollectAndCount(m.status))
	assert.Zero(t, testutil.CollectAndCount(m.lastPing))
}

func TestNilTimestampsAreNotExported(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChecks(reg)

	m.UpdateStatus(&check.Check{Token: "t", Name: "n", Status: check.StatusNew})
	assert.Equal(t, 1, testutil.CollectAndCount(m.status))
	assert.Zero(t, testutil.CollectAndCount(m.lastPing))
	assert.Zero(t, testutil.CollectAndCount(m.duration))
}
