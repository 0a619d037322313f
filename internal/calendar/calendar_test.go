package calendar

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
		&models.Crew{}, &models.CrewMember{}, &models.CrewScheduleDay{},
		&models.Absence{}, &models.Holiday{},
	))
	return gdb
}

var (
	monday   = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	sunday   = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
)

func TestWorkableHoursDefaults(t *testing.T) {
	gdb := testDB(t)

	hours, err := WorkableHours(gdb, 1, monday)
	require.NoError(t, err)
	assert.Equal(t, 8.0, hours)

	hours, err = WorkableHours(gdb, 1, saturday)
	require.NoError(t, err)
	assert.Equal(t, 4.0, hours)

	hours, err = WorkableHours(gdb, 1, sunday)
	require.NoError(t, err)
	assert.Zero(t, hours)
}

func TestWorkableHoursExplicitSchedule(t *testing.T) {
	gdb := testDB(t)
	crew := models.Crew{Name: "north"}
	require.NoError(t, gdb.Create(&crew).Error)
	require.NoError(t, gdb.Create(&models.CrewScheduleDay{
		CrewID: crew.ID, Weekday: int(time.Monday), Hours: 6,
	}).Error)

	hours, err := WorkableHours(gdb, crew.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, 6.0, hours, "explicit row beats the default week")

	// Another crew still gets the default.
	hours, err = WorkableHours(gdb, crew.ID+1, monday)
	require.NoError(t, err)
	assert.Equal(t, 8.0, hours)
}

func TestWorkableHoursHoliday(t *testing.T) {
	gdb := testDB(t)
	require.NoError(t, gdb.Create(&models.Holiday{Date: monday, Label: "spring fair", Active: true}).Error)

	hours, err := WorkableHours(gdb, 1, monday)
	require.NoError(t, err)
	assert.Zero(t, hours, "holidays zero every crew's hours")

	// Inactive holidays do not count.
	require.NoError(t, gdb.Create(&models.Holiday{Date: saturday, Active: false}).Error)
	hours, err = WorkableHours(gdb, 1, saturday)
	require.NoError(t, err)
	assert.Equal(t, 4.0, hours)
}

func TestCrewAvailable(t *testing.T) {
	gdb := testDB(t)
	crew := models.Crew{Name: "north"}
	require.NoError(t, gdb.Create(&crew).Error)

	var members []models.CrewMember
	for _, name := range []string{"ana", "bob", "carla", "dan"} {
		m := models.CrewMember{CrewID: crew.ID, Name: name, Active: true}
		require.NoError(t, gdb.Create(&m).Error)
		members = append(members, m)
	}

	ok, err := CrewAvailable(gdb, crew.ID, monday)
	require.NoError(t, err)
	assert.True(t, ok, "full crew")

	// Two of four absent: exactly half present, still available.
	for _, m := range members[:2] {
		require.NoError(t, gdb.Create(&models.Absence{
			MemberID: m.ID, From: monday, To: monday, Approved: true,
		}).Error)
	}
	ok, err = CrewAvailable(gdb, crew.ID, monday)
	require.NoError(t, err)
	assert.True(t, ok)

	// A third absence tips below half.
	require.NoError(t, gdb.Create(&models.Absence{
		MemberID: members[2].ID, From: monday, To: monday, Approved: true,
	}).Error)
	ok, err = CrewAvailable(gdb, crew.ID, monday)
	require.NoError(t, err)
	assert.False(t, ok)

	// The next day none of the absences apply.
	ok, err = CrewAvailable(gdb, crew.ID, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, ok, "absences cover only their interval")
}

func TestCrewAvailableEmptyCrew(t *testing.T) {
	gdb := testDB(t)
	crew := models.Crew{Name: "ghosts"}
	require.NoError(t, gdb.Create(&crew).Error)

	ok, err := CrewAvailable(gdb, crew.ID, monday)
	require.NoError(t, err)
	assert.False(t, ok, "a crew with no active members is never available")
}

func TestWorkableDays(t *testing.T) {
	gdb := testDB(t)

	// Monday through Sunday: six workable days, Sunday dropped.
	days, err := WorkableDays(gdb, 1, monday, sunday)
	require.NoError(t, err)
	require.Len(t, days, 6)
	assert.Equal(t, monday, days[0].Date)
	assert.Equal(t, 8.0, days[0].Hours)
	assert.Equal(t, saturday, days[5].Date)
	assert.Equal(t, 4.0, days[5].Hours)
}
