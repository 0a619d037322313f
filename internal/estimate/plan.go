package estimate

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mgarnier/crewplan/internal/calendar"
	"github.com/mgarnier/crewplan/internal/models"
)

// Slice is one planned day of work produced by SpreadHours.
type Slice struct {
	Date  time.Time
	Hours float64
}

// SpreadHours splits totalHours across the crew's workable days in
// [start, end], filling each day up to its capacity in order. Days with zero
// workable hours (Sundays, holidays, explicit 0h schedule) are skipped.
// When the range has no workable capacity at all, the hours land on the
// start day in a single slice so the work is never silently lost.
func SpreadHours(gdb *gorm.DB, crewID uint, totalHours float64, start, end time.Time) ([]Slice, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	days, err := calendar.WorkableDays(gdb, crewID, start, end)
	if err != nil {
		return nil, err
	}

	if len(days) == 0 {
		return []Slice{{Date: models.DateOnly(start), Hours: round2(totalHours)}}, nil
	}

	slices := make([]Slice, 0, len(days))
	remaining := totalHours
	for i, day := range days {
		hours := day.Hours
		if remaining <= hours || i == len(days)-1 {
			// Last workable day absorbs whatever is left, even past capacity.
			hours = remaining
		}
		if hours <= 0 {
			break
		}
		slices = append(slices, Slice{Date: day.Date, Hours: round2(hours)})
		remaining -= hours
	}

	return slices, nil
}
