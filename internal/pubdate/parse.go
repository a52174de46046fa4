package pubdate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var ErrEmpty = errors.New("empty date string")

// relativePattern matches "N units ago" phrases; it is also used when scanning body text.
var relativePattern = regexp.MustCompile(`(?i)\b(\d{1,3})\s+(minute|min|hour|hr|day|week)s?\s+ago\b`)

var relativeDayPattern = regexp.MustCompile(`(?i)^\s*(?:updated\s+|published\s+)?(just now|today|yesterday)\b`)

var relativeUnits = map[string]time.Duration{
	"minute": time.Minute,
	"min":    time.Minute,
	"hour":   time.Hour,
	"hr":     time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

// Parse reads one candidate date string as UTC. Relative phrases are resolved
// against now. Ukrainian month names and phrases ("12 жовтня 2023", "3 години
// тому", "вчора") are read before anything else goes through dateparse, which
// handles ISO 8601, RFC 1123 and most English formats. Zone-less values are
// taken as UTC.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}

	if m := relativePattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			unit := relativeUnits[strings.ToLower(m[2])]
			return now.Add(-time.Duration(n) * unit).UTC(), nil
		}
	}
	if m := relativeDayPattern.FindStringSubmatch(s); m != nil {
		switch strings.ToLower(m[1]) {
		case "yesterday":
			return now.Add(-24 * time.Hour).UTC(), nil
		default:
			return now.UTC(), nil
		}
	}

	if t, matched, err := parseUkrainian(s, now); matched {
		return t, err
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
