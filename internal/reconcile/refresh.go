// Package reconcile holds the periodic jobs that pull stored statuses back
// in line with the clock and with each other. Every job is idempotent: a
// second run over the same state changes nothing.
package reconcile

import (
	"time"

	"gorm.io/gorm"

	"github.com/mgarnier/crewplan/internal/events"
	"github.com/mgarnier/crewplan/internal/models"
)

// RefreshReport summarizes one refresh pass.
type RefreshReport struct {
	SlicesLate    int
	TasksLate     int
	TasksExpired  int
	SlicesExpired int
	Events        []events.Event
	Errors        []error
}

// Refresh derives lateness and expiry from the clock:
//
//  1. PENDING slices whose start deadline has passed become LATE.
//  2. PLANNED tasks holding a LATE slice become LATE; a task with no
//     slices at all is judged against its own planned start instead.
//  3. PLANNED and LATE tasks whose planned end is behind today become
//     EXPIRED, and their still-active slices are cancelled with the
//     EXPIRATION system reason so a later reschedule can restore them.
//
// Bulk transitions use set-based conditional updates; only today's slices
// need a per-row look at the start time.
func Refresh(gdb *gorm.DB, now time.Time) RefreshReport {
	var report RefreshReport
	today := models.DateOnly(now)

	// Past-dated PENDING slices are late no matter their start time.
	res := gdb.Model(&models.Distribution{}).
		Where("status = ? AND date < ?", models.DistPending, today).
		Update("status", models.DistLate)
	if res.Error != nil {
		report.Errors = append(report.Errors, res.Error)
	} else {
		report.SlicesLate += int(res.RowsAffected)
	}

	// Today's slices depend on each one's planned start time.
	var todays []models.Distribution
	err := gdb.Where("status = ? AND date >= ? AND date < ?",
		models.DistPending, today, today.Add(24*time.Hour)).Find(&todays).Error
	if err != nil {
		report.Errors = append(report.Errors, err)
	}
	for _, d := range todays {
		if now.Before(d.StartDeadline()) {
			continue
		}
		err := gdb.Model(&models.Distribution{}).
			Where("id = ? AND status = ?", d.ID, models.DistPending).
			Update("status", models.DistLate).Error
		if err != nil {
			report.Errors = append(report.Errors, err)
			continue
		}
		report.SlicesLate++
		report.Events = append(report.Events,
			events.New(events.DistributionLate, d.TaskID, d.ID, now, ""))
	}

	// A task is late as soon as one of its slices is.
	res = gdb.Model(&models.Task{}).
		Where("status = ? AND id IN (?)", models.TaskPlanned,
			gdb.Model(&models.Distribution{}).Select("task_id").Where("status = ?", models.DistLate)).
		Update("status", models.TaskLate)
	if res.Error != nil {
		report.Errors = append(report.Errors, res.Error)
	} else {
		report.TasksLate = int(res.RowsAffected)
	}

	// Tasks without any slice fall back to their own planned bounds.
	res = gdb.Model(&models.Task{}).
		Where("status = ? AND planned_start < ? AND id NOT IN (?)", models.TaskPlanned, today,
			gdb.Model(&models.Distribution{}).Select("DISTINCT task_id")).
		Update("status", models.TaskLate)
	if res.Error != nil {
		report.Errors = append(report.Errors, res.Error)
	} else {
		report.TasksLate += int(res.RowsAffected)
	}

	// Expiry: one batched read of the candidates, then two grouped writes.
	// Both writes re-check the status so an operator starting a slice
	// between read and write keeps the task out of EXPIRED.
	var candidates []models.Task
	err = gdb.Where("status IN ? AND planned_end < ?",
		[]models.TaskStatus{models.TaskPlanned, models.TaskLate}, today).Find(&candidates).Error
	if err != nil {
		report.Errors = append(report.Errors, err)
		return report
	}
	if len(candidates) == 0 {
		return report
	}
	ids := make([]uint, len(candidates))
	for i, task := range candidates {
		ids[i] = task.ID
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id IN ? AND status IN ?", ids,
				[]models.TaskStatus{models.TaskPlanned, models.TaskLate}).
			Update("status", models.TaskExpired)
		if res.Error != nil {
			return res.Error
		}
		report.TasksExpired = int(res.RowsAffected)

		res = tx.Model(&models.Distribution{}).
			Where("status IN ? AND task_id IN (?)", models.ActiveDistStatuses,
				tx.Model(&models.Task{}).Select("id").
					Where("id IN ? AND status = ?", ids, models.TaskExpired)).
			Updates(map[string]any{
				"status": models.DistCancelled,
				"reason": models.ReasonExpiration,
			})
		if res.Error != nil {
			return res.Error
		}
		report.SlicesExpired = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		report.Errors = append(report.Errors, err)
		return report
	}

	if report.TasksExpired > 0 {
		var flipped []models.Task
		if err := gdb.Where("id IN ? AND status = ?", ids, models.TaskExpired).Find(&flipped).Error; err != nil {
			report.Errors = append(report.Errors, err)
			return report
		}
		for _, task := range flipped {
			report.Events = append(report.Events,
				events.New(events.TaskExpired, task.ID, 0, now, task.Reference))
		}
	}

	return report
}

// Changed reports whether the pass modified anything.
func (r RefreshReport) Changed() bool {
	return r.SlicesLate+r.TasksLate+r.TasksExpired+r.SlicesExpired > 0
}
