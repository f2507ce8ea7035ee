// ABOUTME: Duration parsing and formatting utilities for configuration values
// ABOUTME: Accepts plain seconds, Go duration strings and HH:MM:SS clock notation

package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse converts a duration string to a time.Duration.
// Bare integers are seconds; "1h30m" style and HH:MM:SS or MM:SS are also accepted.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	// If already a number, assume it's seconds
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

// HumanReadable formats a duration as hours, minutes and seconds in words
func HumanReadable(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds < 60 {
		return plural(seconds, "second")
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	parts := []string{}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
