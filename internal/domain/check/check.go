package check

import "time"

// Status of a monitored check. Persisted as text; no other value is ever
// written to the store.
type Status string

const (
	StatusNew         Status = "new"
	StatusUp          Status = "up"
	StatusDown        Status = "down"
	StatusFailed      Status = "failed"
	StatusMaintenance Status = "maintenance"
)

// Valid reports whether s is one of the five persisted statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusUp, StatusDown, StatusFailed, StatusMaintenance:
		return true
	}
	return false
}

type Check struct {
	ID                 int64      `json:"id"`
	Token              string     `json:"token"`
	Name               string     `json:"name"`
	Schedule           string     `json:"schedule"`
	Grace              string     `json:"grace"`
	Status             Status     `json:"status"`
	LastPingAt         *time.Time `json:"last_ping_at"`
	LastPingDurationMS *int64     `json:"last_ping_duration_ms"`
	ConsecutiveDowns   int        `json:"consecutive_downs"`
	LastError          *string    `json:"last_error"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Clone returns a deep copy, so callers can hand records across goroutine
// boundaries without sharing pointer fields.
func (c *Check) Clone() *Check {
	cp := *c
	if c.LastPingAt != nil {
		t := *c.LastPingAt
		cp.LastPingAt = &t
	}
	if c.LastPingDurationMS != nil {
		d := *c.LastPingDurationMS
		cp.LastPingDurationMS = &d
	}
	if c.LastError != nil {
		e := *c.LastError
		cp.LastError = &e
	}
	return &cp
}
