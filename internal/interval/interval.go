// Package interval parses the human-readable interval strings used for
// check schedules and grace periods ("30s", "10m", "1d").
package interval

import (
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^(\d+)(ms|s|m|h|d)$`)

var unitMillis = map[string]int64{
	"ms": 1,
	"s":  1000,
	"m":  60 * 1000,
	"h":  60 * 60 * 1000,
	"d":  24 * 60 * 60 * 1000,
}

// Parse converts an interval string into a duration. Malformed input yields
// zero rather than an error: a zero schedule collapses the deadline to the
// reference time, so a misconfigured check goes down on the next evaluation
// instead of silently going unmonitored.
func Parse(s string) time.Duration {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return time.Duration(n*unitMillis[m[2]]) * time.Millisecond
}
