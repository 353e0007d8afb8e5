// Package notifier periodically summarizes current check state and hands
// it to a delivery collaborator. The whole path is observational: it never
// mutates check state, and a failed delivery only produces a log line.
package notifier

import (
	"context"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

type DownCheck struct {
	Name       string     `json:"name"`
	Token      string     `json:"token"`
	LastPingAt *time.Time `json:"last_ping_at"`
}

type Summary struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Total       int                  `json:"total"`
	ByStatus    map[check.Status]int `json:"by_status"`
	Down        []DownCheck          `json:"down"`
}

// Deliverer hands a summary to the outside world. Failures are non-fatal
// to the caller.
type Deliverer interface {
	Deliver(ctx context.Context, s Summary) error
}

type Lister interface {
	List(ctx context.Context) ([]*check.Check, error)
}

// BuildSummary partitions a snapshot of checks by status.
func BuildSummary(list []*check.Check, now time.Time) Summary {
	s := Summary{
		GeneratedAt: now,
		Total:       len(list),
		ByStatus:    make(map[check.Status]int),
	}
	for _, c := range list {
		s.ByStatus[c.Status]++
		if c.Status == check.StatusDown {
			s.Down = append(s.Down, DownCheck{
				Name:       c.Name,
				Token:      c.Token,
				LastPingAt: c.LastPingAt,
			})
		}
	}
	return s
}
