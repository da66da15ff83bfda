package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses Go-style duration strings and additionally accepts
// d (days, 24h) and w (weeks, 7d) units, matching the range shorthand used
// throughout the config ("3d", "1w").
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if !strings.ContainsAny(raw, "dw") {
		return time.ParseDuration(raw)
	}

	s := raw
	var b strings.Builder
	if s[0] == '+' || s[0] == '-' {
		b.WriteByte(s[0])
		s = s[1:]
	}

	for len(s) > 0 {
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		num, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}

		switch s[i] {
		case 'd':
			b.WriteString(strconv.FormatFloat(num*24, 'f', -1, 64))
			b.WriteByte('h')
			s = s[i+1:]
		case 'w':
			b.WriteString(strconv.FormatFloat(num*7*24, 'f', -1, 64))
			b.WriteByte('h')
			s = s[i+1:]
		default:
			j := i
			for j < len(s) && (s[j] < '0' || s[j] > '9') && s[j] != '.' {
				j++
			}
			b.WriteString(s[:j])
			s = s[j:]
		}
	}

	return time.ParseDuration(b.String())
}
