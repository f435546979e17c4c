package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnparseableTime is returned when no recognised time form matches.
	ErrUnparseableTime = errors.New("unrecognised time expression")
	// ErrDeadlineNotInFuture is returned when the expression parsed but resolved to now or the past.
	ErrDeadlineNotInFuture = errors.New("time expression is not in the future")
)

var (
	dateTimePattern   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})$`)
	clockPattern      = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	durationPattern   = regexp.MustCompile(`^(?:\d+\s*[smhd]\s*)+$`)
	durationTokenExpr = regexp.MustCompile(`(\d+)\s*([smhd])`)
)

var unitDurations = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseTimeExpression converts a user-typed expression into an absolute UTC instant.
// Forms are tried in order: "D/M/YYYY H:MM", "H:MM" (next occurrence), and one or
// more "<n><unit>" tokens added to now. ok is false when nothing matches.
func ParseTimeExpression(input string, now time.Time) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return time.Time{}, false
	}
	now = now.UTC()

	if m := dateTimePattern.FindStringSubmatch(s); m != nil {
		return parseDateTime(m)
	}
	if m := clockPattern.FindStringSubmatch(s); m != nil {
		return parseClock(m, now)
	}
	if durationPattern.MatchString(s) {
		d, err := sumDurationTokens(s)
		if err != nil {
			return time.Time{}, false
		}
		return now.Add(d), true
	}
	return time.Time{}, false
}

// ResolveDeadline parses input and requires the result to be strictly after now.
func ResolveDeadline(input string, now time.Time) (time.Time, error) {
	t, ok := ParseTimeExpression(input, now)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, input)
	}
	if !t.After(now) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDeadlineNotInFuture, input)
	}
	return t, nil
}

// ParseDuration extends time.ParseDuration to support days (d) and summed
// tokens such as "1h30m" or "2d 4h".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if durationPattern.MatchString(s) {
		return sumDurationTokens(s)
	}
	return time.ParseDuration(s)
}

func parseDateTime(m []string) (time.Time, bool) {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	if !validClock(hour, minute) || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	// time.Date normalises 31/2 into March; reject instead.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

func parseClock(m []string, now time.Time) (time.Time, bool) {
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if !validClock(hour, minute) {
		return time.Time{}, false
	}
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}

func sumDurationTokens(s string) (time.Duration, error) {
	var total time.Duration
	for _, tok := range durationTokenExpr.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseInt(tok[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid magnitude %q: %w", tok[1], err)
		}
		unit := unitDurations[tok[2]]
		if n > int64(math.MaxInt64/unit) {
			return 0, fmt.Errorf("duration %s%s overflows", tok[1], tok[2])
		}
		part := time.Duration(n) * unit
		if total > math.MaxInt64-part {
			return 0, fmt.Errorf("duration %q overflows", s)
		}
		total += part
	}
	return total, nil
}
