// Package metrics exports per-check state as prometheus gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

// statusCode maps a status to the numeric value exported on the status
// gauge. Statuses this package has never seen map to -1.
func statusCode(s check.Status) float64 {
	switch s {
	case check.StatusNew:
		return 0
	case check.StatusUp:
		return 1
	case check.StatusDown:
		return 2
	case check.StatusFailed:
		return 3
	case check.StatusMaintenance:
		return 4
	default:
		return -1
	}
}

type Checks struct {
	status   *prometheus.GaugeVec
	lastPing *prometheus.GaugeVec
	duration *prometheus.GaugeVec
	downs    *prometheus.GaugeVec
}

var _ check.StatusSink = (*Checks)(nil)

func NewChecks(reg prometheus.Registerer) *Checks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	labels := []string{"token", "name"}
	return &Checks{
		status: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulsewatch_check_status",
			Help: "Check status (0=new 1=up 2=down 3=failed 4=maintenance)",
		}, labels),
		lastPing: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulsewatch_check_last_ping_timestamp_seconds",
			Help: "Unix time of the last accepted ping or failure report",
		}, labels),
		duration: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulsewatch_check_last_ping_duration_ms",
			Help: "Reported duration of the last job invocation",
		}, labels),
		downs: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pulsewatch_check_consecutive_downs",
			Help: "Times the engine has marked the check down since its last ping",
		}, labels),
	}
}

func (m *Checks) UpdateStatus(c *check.Check) {
	l := prometheus.Labels{"token": c.Token, "name": c.Name}
	m.status.With(l).Set(statusCode(c.Status))
	m.downs.With(l).Set(float64(c.ConsecutiveDowns))
	if c.LastPingAt != nil {
		m.lastPing.With(l).Set(float64(c.LastPingAt.Unix()))
	}
	if c.LastPingDurationMS != nil {
		m.duration.With(l).Set(float64(*c.LastPingDurationMS))
	}
}

func (m *Checks) RemoveStatus(c *check.Check) {
	l := prometheus.Labels{"token": c.Token, "name": c.Name}
	m.status.Delete(l)
	m.lastPing.Delete(l)
	m.duration.Delete(l)
	m.downs.Delete(l)
}
