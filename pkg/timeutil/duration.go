// Package timeutil formats focus timers and parses human-friendly windows.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the lookback used by session listings when none is given.
const DefaultWindow = "1w"

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var (
	segmentPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	units          = []struct {
		label   string
		value   time.Duration
		aliases []string
	}{
		{"w", week, []string{"w", "wk", "wks", "week", "weeks"}},
		{"d", day, []string{"d", "day", "days"}},
		{"h", time.Hour, []string{"h", "hr", "hrs", "hour", "hours"}},
		{"m", time.Minute, []string{"m", "min", "mins", "minute", "minutes"}},
		{"s", time.Second, []string{"s", "sec", "secs", "second", "seconds"}},
	}
	unitByAlias = func() map[string]time.Duration {
		m := make(map[string]time.Duration)
		for _, u := range units {
			for _, a := range u.aliases {
				m[a] = u.value
			}
		}
		return m
	}()
)

// ParseWindow parses strings such as "1w", "3d" or "1h30m" and returns the
// duration with its compact canonical label. Empty input means DefaultWindow.
func ParseWindow(input string) (time.Duration, string, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultWindow
	}

	var total time.Duration
	for len(remaining) > 0 {
		m := segmentPattern.FindStringSubmatch(remaining)
		if len(m) != 3 {
			return 0, "", fmt.Errorf("invalid duration segment %q", strings.TrimSpace(remaining))
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid duration value %q: %w", m[1], err)
		}
		base, ok := unitByAlias[m[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported duration unit %q", m[2])
		}
		total += time.Duration(n) * base
		remaining = remaining[len(m[0]):]
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("duration must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// ParseMinutes accepts either a bare minute count ("90") or a window string
// ("1h30m") and returns whole minutes.
func ParseMinutes(input string) (int, error) {
	trimmed := strings.TrimSpace(input)
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, nil
	}
	d, _, err := ParseWindow(trimmed)
	if err != nil {
		return 0, err
	}
	return int(d / time.Minute), nil
}

// FormatWindow renders d using week, day, hour, minute and second tokens.
func FormatWindow(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	var b strings.Builder
	for _, u := range units {
		if d < u.value {
			continue
		}
		n := d / u.value
		d -= n * u.value
		fmt.Fprintf(&b, "%d%s", n, u.label)
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}
