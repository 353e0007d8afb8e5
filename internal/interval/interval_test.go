package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"500ms", 500 * time.Millisecond},
		{"30s", 30 * time.Second},
		{"10m", 10 * time.Minute},
		{"2h", 2 * time.Hour},
		{"1d", 24 * time.Hour},
		{"0s", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Parse(tc.in), "input %q", tc.in)
	}
}

func TestParseMalformed(t *testing.T) {
	// Malformed input degrades to zero so a bad schedule trips the deadline
	// immediately instead of disabling the check.
	malformed := []string{
		"",
		"10",
		"m",
		"-5m",
		"5.5m",
		"10w",
		"10 m",
		" 10m",
		"10m ",
		"ten minutes",
		"10M",
		"1y",
	}
	for _, in := range malformed {
		assert.Equal(t, time.Duration(0), Parse(in), "input %q", in)
	}
}
