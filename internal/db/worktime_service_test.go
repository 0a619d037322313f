package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkedTimePrecedence(t *testing.T) {
	setup(t)
	task := planTask(t, 5)
	dist := task.Distributions[0]

	// Nothing observed yet: the estimate speaks.
	worked, err := ResolveWorkedTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceEstimate, worked.Source)
	assert.Equal(t, 5.0, worked.Hours)
	assert.False(t, worked.Reliable)

	// A labor entry beats the estimate.
	_, err = LogLabor(task.ID, "ana", 2, "")
	require.NoError(t, err)
	worked, err = ResolveWorkedTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceLabor, worked.Source)
	assert.Equal(t, 2.0, worked.Hours)
	assert.False(t, worked.Reliable)

	// Actual hours on a DONE slice beat the labor log.
	_, _, err = StartDistribution(dist.ID, monday)
	require.NoError(t, err)
	actual := 3.0
	_, _, err = FinishDistribution(dist.ID, &actual, monday)
	require.NoError(t, err)
	worked, err = ResolveWorkedTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceActual, worked.Source)
	assert.Equal(t, 3.0, worked.Hours)
	assert.True(t, worked.Reliable)

	// The manual override beats everything.
	_, err = SetManualHours(task.ID, 10, "chief", monday)
	require.NoError(t, err)
	worked, err = ResolveWorkedTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceManual, worked.Source)
	assert.Equal(t, 10.0, worked.Hours)
	assert.True(t, worked.Reliable)

	// Clearing it falls back to the observed actuals.
	_, err = ClearManualHours(task.ID)
	require.NoError(t, err)
	worked, err = ResolveWorkedTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceActual, worked.Source)
}

func TestWorkedTimeManualZero(t *testing.T) {
	setup(t)
	task := planTask(t, 5)

	// Zero is a legitimate manual value: "no time was worked".
	_, err := SetManualHours(task.ID, 0, "chief", monday)
	require.NoError(t, err)

	worked, err := ResolveWorkedTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceManual, worked.Source)
	assert.Zero(t, worked.Hours)

	_, err = SetManualHours(task.ID, -1, "chief", monday)
	assert.Error(t, err)
}

func TestWorkedTimePlannedFallback(t *testing.T) {
	setup(t)

	// No estimate, explicit slices only: the planned tier answers.
	task, _, err := CreateTask(CreateTaskRequest{
		TaskType: "weeding",
		Date:     monday,
		Slices:   []DaySpec{{Date: monday, Hours: 6}},
	})
	require.NoError(t, err)

	worked, err := ResolveWorkedTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, SourcePlanned, worked.Source)
	assert.Equal(t, 6.0, worked.Hours)
}

func TestWorkedTimeNone(t *testing.T) {
	setup(t)
	task, _, err := CreateTask(CreateTaskRequest{TaskType: "weeding", Date: monday})
	require.NoError(t, err)

	worked, err := ResolveWorkedTime(task.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceNone, worked.Source)
	assert.Zero(t, worked.Hours)
}

func TestLogLaborValidation(t *testing.T) {
	setup(t)
	task := planTask(t, 2)

	_, err := LogLabor(task.ID, "", 2, "")
	assert.Error(t, err, "worker required")
	_, err = LogLabor(task.ID, "ana", 0, "")
	assert.Error(t, err, "hours must be positive")
	_, err = LogLabor(99999, "ana", 2, "")
	assert.Error(t, err, "unknown task")

	_, err = LogLabor(task.ID, "ana", 1.5, "edge trim")
	require.NoError(t, err)
	entries, err := GetLaborEntries(task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "edge trim", entries[0].Note)
}
