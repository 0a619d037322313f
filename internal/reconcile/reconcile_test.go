package reconcile

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mgarnier/crewplan/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(
		&models.Task{}, &models.TaskObject{}, &models.Distribution{},
		&models.Crew{}, &models.CrewScheduleDay{}, &models.Holiday{},
	))
	return gdb
}

var (
	monday = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	noon   = monday.Add(12 * time.Hour)
)

func seedTask(t *testing.T, gdb *gorm.DB, status models.TaskStatus, start, end time.Time, dists ...models.Distribution) *models.Task {
	t.Helper()
	task := models.Task{
		Reference:     "TSK-" + start.Format("20060102") + string(status),
		TaskType:      "mowing",
		PlannedStart:  start,
		PlannedEnd:    end,
		Status:        status,
		Distributions: dists,
	}
	require.NoError(t, gdb.Create(&task).Error)
	return &task
}

func TestRefreshMarksPastSlicesLate(t *testing.T) {
	gdb := testDB(t)
	task := seedTask(t, gdb, models.TaskPlanned, monday.AddDate(0, 0, -1), monday,
		models.Distribution{Date: monday.AddDate(0, 0, -1), PlannedHours: 4, Status: models.DistPending},
		models.Distribution{Date: monday, PlannedHours: 4, Status: models.DistPending},
	)

	report := Refresh(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.SlicesLate, "yesterday's slice only")
	assert.Equal(t, 1, report.TasksLate)

	var dists []models.Distribution
	require.NoError(t, gdb.Where("task_id = ?", task.ID).Order("date").Find(&dists).Error)
	assert.Equal(t, models.DistLate, dists[0].Status)
	assert.Equal(t, models.DistPending, dists[1].Status, "today's open-time slice waits for end of day")

	var reloaded models.Task
	require.NoError(t, gdb.First(&reloaded, task.ID).Error)
	assert.Equal(t, models.TaskLate, reloaded.Status)
}

func TestRefreshUsesStartTimeDeadline(t *testing.T) {
	gdb := testDB(t)
	task := seedTask(t, gdb, models.TaskPlanned, monday, monday,
		models.Distribution{Date: monday, PlannedHours: 2, Status: models.DistPending, StartTime: "08:00", EndTime: "10:00"},
		models.Distribution{Date: monday, PlannedHours: 2, Status: models.DistPending, StartTime: "14:00", EndTime: "16:00"},
	)

	report := Refresh(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.SlicesLate)

	var dists []models.Distribution
	require.NoError(t, gdb.Where("task_id = ?", task.ID).Order("start_time").Find(&dists).Error)
	assert.Equal(t, models.DistLate, dists[0].Status, "08:00 has passed at noon")
	assert.Equal(t, models.DistPending, dists[1].Status, "14:00 has not")
}

func TestRefreshExpiresOverdueTasks(t *testing.T) {
	gdb := testDB(t)
	lastWeek := monday.AddDate(0, 0, -7)
	task := seedTask(t, gdb, models.TaskPlanned, lastWeek, lastWeek,
		models.Distribution{Date: lastWeek, PlannedHours: 4, Status: models.DistPending},
		models.Distribution{Date: lastWeek, PlannedHours: 2, Status: models.DistDone},
	)

	report := Refresh(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.TasksExpired)
	assert.Equal(t, 1, report.SlicesExpired, "only the active slice is cancelled")

	var reloaded models.Task
	require.NoError(t, gdb.First(&reloaded, task.ID).Error)
	assert.Equal(t, models.TaskExpired, reloaded.Status)

	// Under an expired task every slice is settled: cancelled or done.
	var dists []models.Distribution
	require.NoError(t, gdb.Where("task_id = ?", task.ID).Find(&dists).Error)
	for _, d := range dists {
		assert.Contains(t, []models.DistStatus{models.DistCancelled, models.DistDone}, d.Status)
		if d.Status == models.DistCancelled {
			assert.Equal(t, models.ReasonExpiration, d.Reason)
		}
	}
}

func TestRefreshLeavesInProgressAlone(t *testing.T) {
	gdb := testDB(t)
	lastWeek := monday.AddDate(0, 0, -7)
	task := seedTask(t, gdb, models.TaskInProgress, lastWeek, lastWeek,
		models.Distribution{Date: lastWeek, PlannedHours: 4, Status: models.DistInProgress},
	)

	report := Refresh(gdb, noon)
	assert.Zero(t, report.TasksExpired, "work in progress never expires")

	var reloaded models.Task
	require.NoError(t, gdb.First(&reloaded, task.ID).Error)
	assert.Equal(t, models.TaskInProgress, reloaded.Status)
}

func TestRefreshIsIdempotent(t *testing.T) {
	gdb := testDB(t)
	lastWeek := monday.AddDate(0, 0, -7)
	seedTask(t, gdb, models.TaskPlanned, lastWeek, lastWeek,
		models.Distribution{Date: lastWeek, PlannedHours: 4, Status: models.DistPending},
	)

	first := Refresh(gdb, noon)
	assert.True(t, first.Changed())

	second := Refresh(gdb, noon)
	assert.Empty(t, second.Errors)
	assert.False(t, second.Changed(), "a second pass over the same state is a no-op")
}

func TestRefreshExpiresOnlyStillActionableTasks(t *testing.T) {
	gdb := testDB(t)
	lastWeek := monday.AddDate(0, 0, -7)
	planned := seedTask(t, gdb, models.TaskPlanned, lastWeek, lastWeek,
		models.Distribution{Date: lastWeek, PlannedHours: 4, Status: models.DistLate},
	)
	late := seedTask(t, gdb, models.TaskLate, lastWeek, lastWeek,
		models.Distribution{Date: lastWeek, PlannedHours: 4, Status: models.DistLate},
	)
	started := seedTask(t, gdb, models.TaskInProgress, lastWeek, lastWeek,
		models.Distribution{Date: lastWeek, PlannedHours: 4, Status: models.DistInProgress},
	)

	report := Refresh(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 2, report.TasksExpired)
	assert.Equal(t, 2, report.SlicesExpired)
	assert.Len(t, report.Events, 2)

	for _, id := range []uint{planned.ID, late.ID} {
		var reloaded models.Task
		require.NoError(t, gdb.First(&reloaded, id).Error)
		assert.Equal(t, models.TaskExpired, reloaded.Status)
	}

	// The started task and its slice stay untouched by the expiry write.
	var reloaded models.Task
	require.NoError(t, gdb.First(&reloaded, started.ID).Error)
	assert.Equal(t, models.TaskInProgress, reloaded.Status)
	var dist models.Distribution
	require.NoError(t, gdb.Where("task_id = ?", started.ID).First(&dist).Error)
	assert.Equal(t, models.DistInProgress, dist.Status)
}

func TestFixCancelsStraySlices(t *testing.T) {
	gdb := testDB(t)
	task := seedTask(t, gdb, models.TaskCancelled, monday, monday,
		models.Distribution{Date: monday, PlannedHours: 4, Status: models.DistPending},
	)

	report := Fix(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.StrayCancelled)

	var dist models.Distribution
	require.NoError(t, gdb.Where("task_id = ?", task.ID).First(&dist).Error)
	assert.Equal(t, models.DistCancelled, dist.Status)
	assert.Equal(t, models.ReasonTaskCancelled, dist.Reason)
}

func TestFixFlipsPastPendingSlices(t *testing.T) {
	gdb := testDB(t)
	lastWeek := monday.AddDate(0, 0, -7)
	task := seedTask(t, gdb, models.TaskLate, lastWeek, monday,
		models.Distribution{Date: lastWeek, PlannedHours: 4, Status: models.DistPending},
		models.Distribution{Date: monday, PlannedHours: 4, Status: models.DistPending},
	)

	report := Fix(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.SlicesLate, "only the past slice flips")

	var dists []models.Distribution
	require.NoError(t, gdb.Where("task_id = ?", task.ID).Order("date").Find(&dists).Error)
	assert.Equal(t, models.DistLate, dists[0].Status)
	assert.Equal(t, models.DistPending, dists[1].Status)
}

func TestFixCreatesMissingSlices(t *testing.T) {
	gdb := testDB(t)
	hours := 6.0
	task := seedTask(t, gdb, models.TaskPlanned, monday, monday)
	require.NoError(t, gdb.Model(task).Update("estimated_hours", hours).Error)

	report := Fix(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.SlicesCreated)

	var dists []models.Distribution
	require.NoError(t, gdb.Where("task_id = ?", task.ID).Find(&dists).Error)
	require.Len(t, dists, 1)
	assert.Equal(t, models.DistPending, dists[0].Status)
	assert.Equal(t, 6.0, dists[0].PlannedHours)

	second := Fix(gdb, noon)
	assert.False(t, second.Changed(), "repair is idempotent")
}

func TestRefreshMarksBareTaskLateFromItsOwnBounds(t *testing.T) {
	gdb := testDB(t)
	yesterday := monday.AddDate(0, 0, -1)
	task := seedTask(t, gdb, models.TaskPlanned, yesterday, monday)

	report := Refresh(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.TasksLate)

	var reloaded models.Task
	require.NoError(t, gdb.First(&reloaded, task.ID).Error)
	assert.Equal(t, models.TaskLate, reloaded.Status)
}

func TestFixPromotesStuckTasks(t *testing.T) {
	gdb := testDB(t)
	task := seedTask(t, gdb, models.TaskInProgress, monday, monday,
		models.Distribution{Date: monday, PlannedHours: 4, Status: models.DistDone},
		models.Distribution{Date: monday, PlannedHours: 2, Status: models.DistCancelled, Reason: models.ReasonWeather},
	)

	report := Fix(gdb, noon)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.TasksCompleted)

	var reloaded models.Task
	require.NoError(t, gdb.First(&reloaded, task.ID).Error)
	assert.Equal(t, models.TaskDone, reloaded.Status)
	assert.NotNil(t, reloaded.ActualEnd)
}

func TestFixIgnoresTerminalTasksWithoutSlices(t *testing.T) {
	gdb := testDB(t)
	task := seedTask(t, gdb, models.TaskDone, monday, monday)

	report := Fix(gdb, noon)
	assert.Zero(t, report.SlicesCreated)

	var count int64
	require.NoError(t, gdb.Model(&models.Distribution{}).Where("task_id = ?", task.ID).Count(&count).Error)
	assert.Zero(t, count)
}
