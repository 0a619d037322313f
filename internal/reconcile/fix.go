package reconcile

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mgarnier/crewplan/internal/estimate"
	"github.com/mgarnier/crewplan/internal/events"
	"github.com/mgarnier/crewplan/internal/models"
)

// FixReport summarizes one consistency pass.
type FixReport struct {
	StrayCancelled int
	SlicesLate     int
	SlicesCreated  int
	TasksCompleted int
	Events         []events.Event
	Errors         []error
}

// Fix repairs the ways tasks and slices drift apart:
//
//  1. Stray slices: active slices hanging under an EXPIRED or CANCELLED
//     task are cancelled with the matching system reason.
//  2. Overdue slices: PENDING slices with a past date go LATE, the same
//     flip Refresh does, so the store converges even when only the daily
//     job runs.
//  3. Missing slices: an actionable task with no slices at all gets a fresh
//     plan across the workable days of its range.
//  4. Stuck completion: a task still IN_PROGRESS whose slices are all
//     settled, with at least one DONE, is promoted to DONE.
//
// Refresh handles clock-driven drift; Fix handles structural drift, e.g.
// after a crash mid-transition or a hand edit of the database.
func Fix(gdb *gorm.DB, now time.Time) FixReport {
	var report FixReport

	for status, reason := range map[models.TaskStatus]models.Reason{
		models.TaskExpired:   models.ReasonExpiration,
		models.TaskCancelled: models.ReasonTaskCancelled,
	} {
		res := gdb.Model(&models.Distribution{}).
			Where("status IN ? AND task_id IN (?)", models.ActiveDistStatuses,
				gdb.Model(&models.Task{}).Select("id").Where("status = ?", status)).
			Updates(map[string]any{"status": models.DistCancelled, "reason": reason})
		if res.Error != nil {
			report.Errors = append(report.Errors, res.Error)
			continue
		}
		report.StrayCancelled += int(res.RowsAffected)
	}

	late := gdb.Model(&models.Distribution{}).
		Where("status = ? AND date < ?", models.DistPending, models.DateOnly(now)).
		Update("status", models.DistLate)
	if late.Error != nil {
		report.Errors = append(report.Errors, late.Error)
	} else {
		report.SlicesLate = int(late.RowsAffected)
	}

	// Tasks that should have work planned but have no slices whatsoever.
	var bare []models.Task
	err := gdb.Preload("Crews").
		Where("status IN ? AND id NOT IN (?)",
			[]models.TaskStatus{models.TaskPlanned, models.TaskLate, models.TaskInProgress},
			gdb.Model(&models.Distribution{}).Select("DISTINCT task_id")).
		Find(&bare).Error
	if err != nil {
		report.Errors = append(report.Errors, err)
		return report
	}

	for _, task := range bare {
		created, err := planSlices(gdb, task)
		if err != nil {
			report.Errors = append(report.Errors, err)
			continue
		}
		report.SlicesCreated += created
		report.Events = append(report.Events,
			events.New(events.DistributionRepaired, task.ID, 0, now, task.Reference))
	}

	// Tasks whose completion transition was lost: no active slice remains,
	// at least one is DONE, but the task is still IN_PROGRESS.
	res := gdb.Model(&models.Task{}).
		Where("status = ?", models.TaskInProgress).
		Where("id NOT IN (?)", gdb.Model(&models.Distribution{}).Select("task_id").
			Where("status IN ?", models.ActiveDistStatuses)).
		Where("id IN (?)", gdb.Model(&models.Distribution{}).Select("task_id").
			Where("status = ?", models.DistDone)).
		Updates(map[string]any{"status": models.TaskDone, "actual_end": now})
	if res.Error != nil {
		report.Errors = append(report.Errors, res.Error)
	} else if res.RowsAffected > 0 {
		report.TasksCompleted = int(res.RowsAffected)
		report.Events = append(report.Events, events.New(events.TaskDone, 0, 0, now,
			"completed by consistency pass"))
	}

	return report
}

// planSlices builds the missing day slices for a task from its estimate and
// its first crew's calendar. Without a usable estimate each workable day
// gets a nominal one-hour slice as a placeholder for hand correction.
func planSlices(gdb *gorm.DB, task models.Task) (int, error) {
	var crewID uint
	if len(task.Crews) > 0 {
		crewID = task.Crews[0].ID
	}

	hours := 1.0 * float64(task.DurationDays())
	if task.EstimatedHours != nil && *task.EstimatedHours > 0 {
		hours = *task.EstimatedHours
	}

	slices, err := estimate.SpreadHours(gdb, crewID, hours, task.PlannedStart, task.PlannedEnd)
	if err != nil {
		return 0, err
	}

	count := 0
	err = gdb.Transaction(func(tx *gorm.DB) error {
		for _, s := range slices {
			dist := models.Distribution{
				TaskID:       task.ID,
				Reference:    newReference(),
				Date:         s.Date,
				PlannedHours: s.Hours,
				Status:       models.DistPending,
			}
			if err := tx.Create(&dist).Error; err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Changed reports whether the pass modified anything.
func (r FixReport) Changed() bool {
	return r.StrayCancelled+r.SlicesLate+r.SlicesCreated+r.TasksCompleted > 0
}

func newReference() string {
	return "DST-" + strings.ToUpper(uuid.NewString()[:8])
}
