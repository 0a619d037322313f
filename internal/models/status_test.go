package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateDistTransition(t *testing.T) {
	allowed := []struct{ from, to DistStatus }{
		{DistPending, DistInProgress},
		{DistPending, DistRescheduled},
		{DistPending, DistCancelled},
		{DistLate, DistInProgress},
		{DistLate, DistRescheduled},
		{DistLate, DistCancelled},
		{DistInProgress, DistDone},
		{DistInProgress, DistCancelled},
		{DistCancelled, DistPending},
	}
	for _, tc := range allowed {
		assert.NoError(t, ValidateDistTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	forbidden := []struct{ from, to DistStatus }{
		{DistPending, DistDone}, // must pass through IN_PROGRESS
		{DistDone, DistPending},
		{DistDone, DistCancelled},
		{DistRescheduled, DistPending},
		{DistRescheduled, DistInProgress},
		{DistCancelled, DistInProgress},
		{DistCancelled, DistDone},
	}
	for _, tc := range forbidden {
		assert.Error(t, ValidateDistTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	// Same-status is a no-op, never an error.
	for _, s := range []DistStatus{DistPending, DistDone, DistCancelled} {
		assert.NoError(t, ValidateDistTransition(s, s))
	}
}

func TestDistStatusPredicates(t *testing.T) {
	assert.True(t, DistPending.IsActive())
	assert.True(t, DistLate.IsActive())
	assert.True(t, DistInProgress.IsActive())
	assert.False(t, DistDone.IsActive())
	assert.False(t, DistCancelled.IsActive())

	assert.True(t, DistDone.IsTerminal())
	assert.True(t, DistRescheduled.IsTerminal())
	assert.False(t, DistCancelled.IsTerminal(), "cancelled slices can be restored")
}

func TestValidOperatorReason(t *testing.T) {
	assert.True(t, ValidOperatorReason(ReasonWeather))
	assert.True(t, ValidOperatorReason(ReasonOther))
	assert.False(t, ValidOperatorReason(ReasonExpiration), "system reason")
	assert.False(t, ValidOperatorReason(ReasonTaskCancelled), "system reason")
	assert.False(t, ValidOperatorReason("SNOW"))
}

func TestDurationDays(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	single := Task{PlannedStart: day, PlannedEnd: day}
	assert.Equal(t, 1, single.DurationDays())

	multi := Task{PlannedStart: day, PlannedEnd: day.AddDate(0, 0, 2)}
	assert.Equal(t, 3, multi.DurationDays())
}

func TestStartDeadline(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	timed := Distribution{Date: day, StartTime: "08:30"}
	assert.Equal(t, day.Add(8*time.Hour+30*time.Minute), timed.StartDeadline())

	open := Distribution{Date: day}
	assert.Equal(t, day.Add(24*time.Hour), open.StartDeadline())
}
