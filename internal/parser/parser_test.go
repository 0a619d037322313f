package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC) // a Monday

func TestParseDate(t *testing.T) {
	midnight := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	cases := map[string]time.Time{
		"today":      midnight,
		"tomorrow":   midnight.AddDate(0, 0, 1),
		"+3d":        midnight.AddDate(0, 0, 3),
		"2026-04-01": time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		"01/04/2026": time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		"9/3/2026":   midnight,
	}
	for input, want := range cases {
		got, err := ParseDate(input, now)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, bad := range []string{"", "soon", "2026-13-01", "32/01/2026", "2026/01/02"} {
		_, err := ParseDate(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange("2026-03-09..2026-03-11", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), end)

	start, end, err = ParseDateRange("tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, start, end)

	_, _, err = ParseDateRange("2026-03-11..2026-03-09", now)
	assert.Error(t, err, "reversed range")
}

func TestParseDaySlice(t *testing.T) {
	s, err := ParseDaySlice("2026-03-09=4@08:00-12:00", now)
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Hours)
	assert.Equal(t, "08:00", s.StartTime)
	assert.Equal(t, "12:00", s.EndTime)

	s, err = ParseDaySlice("tomorrow=6.5", now)
	require.NoError(t, err)
	assert.Equal(t, 6.5, s.Hours)
	assert.Empty(t, s.StartTime)

	for _, bad := range []string{
		"2026-03-09",          // no hours
		"2026-03-09=0",        // zero hours
		"2026-03-09=4@12:00-08:00", // empty window
		"nope=4",
	} {
		_, err := ParseDaySlice(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseDaySlices(t *testing.T) {
	slices, err := ParseDaySlices("2026-03-09=4,2026-03-10=4", now)
	require.NoError(t, err)
	require.Len(t, slices, 2)

	_, err = ParseDaySlices("2026-03-09=4,2026-03-09=2", now)
	assert.Error(t, err, "duplicate day")

	_, err = ParseDaySlices("  ,  ", now)
	assert.Error(t, err, "empty input")
}

func TestParseObject(t *testing.T) {
	obj, err := ParseObject("LAWN-3:lawn:polygon:0.0000012:48.8")
	require.NoError(t, err)
	assert.Equal(t, "LAWN-3", obj.ObjectRef)
	assert.Equal(t, "lawn", obj.ObjectType)
	assert.Equal(t, "polygon", obj.Kind)
	assert.Equal(t, 0.0000012, obj.AreaDeg2)
	assert.Equal(t, 48.8, obj.Latitude)

	obj, err = ParseObject("HEDGE-7:hedge:line:0.0005")
	require.NoError(t, err)
	assert.Equal(t, 0.0005, obj.LengthDeg)
	assert.Zero(t, obj.AreaDeg2)

	obj, err = ParseObject("TREE-1:tree:point")
	require.NoError(t, err)
	assert.Equal(t, "point", obj.Kind)

	for _, bad := range []string{"TREE-1:tree", "TREE-1:tree:blob", ":tree:point", "X:lawn:polygon:-2", "X:lawn:polygon:1:99"} {
		_, err := ParseObject(bad)
		assert.Error(t, err, bad)
	}
}
