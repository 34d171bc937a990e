package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var durationTokenRegex = regexp.MustCompile(`(\d+)\s*([smhd])`)

// ParseDurationSpec parses a duration string such as "1h30m" or "2d 12h"
// into seconds. Units are s, m, h and d; every matched token contributes to
// the sum. A string with no matching tokens is invalid.
func ParseDurationSpec(s string) (int64, error) {
	matches := durationTokenRegex.FindAllStringSubmatch(strings.ToLower(s), -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	var total int64
	for _, m := range matches {
		value, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration value %q: %w", m[1], err)
		}
		switch m[2] {
		case "s":
			total += value
		case "m":
			total += value * 60
		case "h":
			total += value * 3600
		case "d":
			total += value * 86400
		}
	}
	return total, nil
}

// FormatDurationSeconds renders a second count as the duration
// mini-language emits it: non-zero components largest-first, space-joined,
// e.g. 3900 -> "1h 5m". Zero formats as "0s".
func FormatDurationSeconds(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if secs > 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, " ")
}
