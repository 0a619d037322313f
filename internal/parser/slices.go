package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var sliceRegex = regexp.MustCompile(`^([^=]+)=(\d+(?:\.\d+)?)(?:@(\d{2}:\d{2})-(\d{2}:\d{2}))?$`)

// DaySlice is one parsed day-slice specification.
type DaySlice struct {
	Date      time.Time
	Hours     float64
	StartTime string // "08:00" when given
	EndTime   string
}

// ParseDaySlice parses "date=hours" with an optional "@hh:mm-hh:mm" window,
// e.g. "2026-03-09=4@08:00-12:00" or "tomorrow=6".
func ParseDaySlice(input string, now time.Time) (DaySlice, error) {
	m := sliceRegex.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return DaySlice{}, fmt.Errorf("unrecognized day slice %q (expected date=hours[@hh:mm-hh:mm])", input)
	}

	date, err := ParseDate(m[1], now)
	if err != nil {
		return DaySlice{}, err
	}

	hours, err := strconv.ParseFloat(m[2], 64)
	if err != nil || hours <= 0 {
		return DaySlice{}, fmt.Errorf("slice hours must be a positive number, got %q", m[2])
	}

	slice := DaySlice{Date: date, Hours: hours}
	if m[3] != "" {
		if err := validTimeWindow(m[3], m[4]); err != nil {
			return DaySlice{}, err
		}
		slice.StartTime = m[3]
		slice.EndTime = m[4]
	}
	return slice, nil
}

// ParseDaySlices parses a comma-separated list of slice specifications.
func ParseDaySlices(input string, now time.Time) ([]DaySlice, error) {
	var slices []DaySlice
	seen := map[string]bool{}
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		s, err := ParseDaySlice(part, now)
		if err != nil {
			return nil, err
		}
		key := s.Date.Format("2006-01-02")
		if seen[key] {
			return nil, fmt.Errorf("duplicate slice for %s", key)
		}
		seen[key] = true
		slices = append(slices, s)
	}
	if len(slices) == 0 {
		return nil, fmt.Errorf("no day slices in %q", input)
	}
	return slices, nil
}

func validTimeWindow(start, end string) error {
	s, err := time.Parse("15:04", start)
	if err != nil {
		return fmt.Errorf("invalid start time %q", start)
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return fmt.Errorf("invalid end time %q", end)
	}
	if !e.After(s) {
		return fmt.Errorf("time window %s-%s is empty", start, end)
	}
	return nil
}
