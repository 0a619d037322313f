// Package calendar answers one question for the rest of the engine: how many
// hours can a crew work on a given date. Explicit (crew, weekday) schedule
// rows win; otherwise a default week applies. Holidays zero everything.
package calendar

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mgarnier/crewplan/internal/models"
)

// Default week heuristic, used when a crew has no explicit schedule row for
// the weekday: 8h Mon-Fri, 4h Saturday, closed Sunday.
func defaultHours(weekday time.Weekday) float64 {
	switch weekday {
	case time.Sunday:
		return 0
	case time.Saturday:
		return 4
	default:
		return 8
	}
}

// WorkableHours returns the number of hours the crew can work on date.
// Holidays override everything to zero.
func WorkableHours(gdb *gorm.DB, crewID uint, date time.Time) (float64, error) {
	holiday, err := IsHoliday(gdb, date)
	if err != nil {
		return 0, err
	}
	if holiday {
		return 0, nil
	}

	var day models.CrewScheduleDay
	err = gdb.Where("crew_id = ? AND weekday = ?", crewID, int(date.Weekday())).First(&day).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultHours(date.Weekday()), nil
		}
		return 0, err
	}
	return day.Hours, nil
}

// IsHoliday reports whether date is an active holiday.
func IsHoliday(gdb *gorm.DB, date time.Time) (bool, error) {
	var count int64
	day := models.DateOnly(date)
	err := gdb.Model(&models.Holiday{}).
		Where("active = ? AND date >= ? AND date < ?", true, day, day.Add(24*time.Hour)).
		Count(&count).Error
	return count > 0, err
}

// CrewAvailable reports whether at least half of the crew's active members
// are not on approved absence for the date. A crew with no active members is
// never available. This feeds estimation and repair logic; it is not a hard
// scheduling constraint.
func CrewAvailable(gdb *gorm.DB, crewID uint, date time.Time) (bool, error) {
	var members []models.CrewMember
	if err := gdb.Preload("Absences").Where("crew_id = ? AND active = ?", crewID, true).Find(&members).Error; err != nil {
		return false, err
	}
	if len(members) == 0 {
		return false, nil
	}

	present := 0
	for _, m := range members {
		absent := false
		for _, a := range m.Absences {
			if a.Approved && a.Covers(date) {
				absent = true
				break
			}
		}
		if !absent {
			present++
		}
	}

	return present*2 >= len(members), nil
}

// WorkableDays lists the dates in [start, end] (inclusive) on which the crew
// has non-zero workable hours, with the hours for each.
func WorkableDays(gdb *gorm.DB, crewID uint, start, end time.Time) ([]DayHours, error) {
	var days []DayHours
	for d := models.DateOnly(start); !d.After(models.DateOnly(end)); d = d.AddDate(0, 0, 1) {
		hours, err := WorkableHours(gdb, crewID, d)
		if err != nil {
			return nil, err
		}
		if hours > 0 {
			days = append(days, DayHours{Date: d, Hours: hours})
		}
	}
	return days, nil
}

// DayHours is one workable day and its capacity.
type DayHours struct {
	Date  time.Time
	Hours float64
}
