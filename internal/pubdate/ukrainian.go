package pubdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Month stems are the first three letters of the Ukrainian month name, which
// also covers genitive forms ("жовтня") and abbreviations ("бер.").
const ukMonthStem = `(?:січ|лют|бер|кві|тра|чер|лип|сер|вер|жов|лис|гру)\p{L}*`

var ukMonths = map[string]time.Month{
	"січ": time.January,
	"лют": time.February,
	"бер": time.March,
	"кві": time.April,
	"тра": time.May,
	"чер": time.June,
	"лип": time.July,
	"сер": time.August,
	"вер": time.September,
	"жов": time.October,
	"лис": time.November,
	"гру": time.December,
}

// ukDatePattern matches "12 жовтня 2023", "2 січ. 2024 р." and "12 жовтня 2023, 14:30".
var ukDatePattern = regexp.MustCompile(`(?i)(\d{1,2})\s+(` + ukMonthStem + `)\.?\s+(\d{4})(?:\s*(?:р\.|року))?(?:,?\s+(?:о\s+)?(\d{1,2}):(\d{2}))?`)

// ukRelativePattern matches "3 години тому", "15 хв тому", "2 дні тому".
var ukRelativePattern = regexp.MustCompile(`(?i)(\d{1,3})\s+(хв\p{L}*|год\p{L}*|дн\p{L}*|день|тиж\p{L}*)\.?\s+тому`)

var ukRelativeDayPattern = regexp.MustCompile(`(?i)^\s*(?:оновлено:?\s+|опубліковано:?\s+)?(щойно|сьогодні|вчора|учора)(?:,?\s+(?:о\s+)?(\d{1,2}):(\d{2}))?`)

func parseUkrainian(s string, now time.Time) (time.Time, bool, error) {
	if m := ukRelativePattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, true, err
		}
		return now.Add(-time.Duration(n) * ukRelativeUnit(m[2])).UTC(), true, nil
	}

	if m := ukRelativeDayPattern.FindStringSubmatch(s); m != nil {
		word := strings.ToLower(m[1])
		day := now.UTC()
		if word == "вчора" || word == "учора" {
			day = day.Add(-24 * time.Hour)
		}
		if word == "щойно" || m[2] == "" {
			return day, true, nil
		}
		t, err := clockOn(day.Year(), day.Month(), day.Day(), m[2], m[3])
		return t, true, err
	}

	if m := ukDatePattern.FindStringSubmatch(s); m != nil {
		month, ok := ukMonths[firstRunes(strings.ToLower(m[2]), 3)]
		if !ok {
			return time.Time{}, true, fmt.Errorf("unknown month %q", m[2])
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		t, err := clockOn(year, month, day, m[4], m[5])
		return t, true, err
	}

	return time.Time{}, false, nil
}

func ukRelativeUnit(word string) time.Duration {
	switch word = strings.ToLower(word); {
	case strings.HasPrefix(word, "хв"):
		return time.Minute
	case strings.HasPrefix(word, "год"):
		return time.Hour
	case strings.HasPrefix(word, "тиж"):
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// clockOn builds a UTC time and rejects dates that time.Date would normalize,
// such as 31 February.
func clockOn(year int, month time.Month, day int, hh, mm string) (time.Time, error) {
	hour, minute := 0, 0
	if hh != "" {
		hour, _ = strconv.Atoi(hh)
		minute, _ = strconv.Atoi(mm)
		if hour > 23 || minute > 59 {
			return time.Time{}, fmt.Errorf("invalid clock %s:%s", hh, mm)
		}
	}
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("invalid date %d-%02d-%02d", year, month, day)
	}
	return t, nil
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
