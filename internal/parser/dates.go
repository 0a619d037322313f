// Package parser turns the compact argument syntax of the CLI into typed
// values: dates in several human formats and day-slice specifications.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	slashDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex  = regexp.MustCompile(`^\+(\d+)d$`)
)

// ParseDate accepts yyyy-mm-dd, dd/mm/yyyy, +Nd, and the words today and
// tomorrow. The result is midnight local time.
func ParseDate(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch input {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	if m := relativeRegex.FindStringSubmatch(input); m != nil {
		days, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, days), nil
	}

	if m := isoDateRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[1], m[2], m[3], now.Location())
	}

	if m := slashDateRegex.FindStringSubmatch(input); m != nil {
		return buildDate(m[3], m[2], m[1], now.Location())
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q (try 2026-03-09, 09/03/2026, today, tomorrow, +3d)", input)
}

func buildDate(year, month, day string, loc *time.Location) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow (e.g. month 13); reject that silently
	// shifted result instead of accepting it.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, fmt.Errorf("invalid calendar date %04d-%02d-%02d", y, m, d)
	}
	return t, nil
}

// ParseDateRange accepts "date" or "date..date".
func ParseDateRange(input string, now time.Time) (time.Time, time.Time, error) {
	parts := strings.SplitN(input, "..", 2)

	start, err := ParseDate(parts[0], now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if len(parts) == 1 {
		return start, start, nil
	}

	end, err := ParseDate(parts[1], now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("range end %s before start %s", parts[1], parts[0])
	}
	return start, end, nil
}
