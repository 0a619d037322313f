package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mgarnier/crewplan/internal/events"
	"github.com/mgarnier/crewplan/internal/models"
)

// GetDistributionByID retrieves a slice with its task.
func GetDistributionByID(id uint) (*models.Distribution, error) {
	var dist models.Distribution
	if err := DB.Preload("Task").First(&dist, id).Error; err != nil {
		return nil, fmt.Errorf("distribution #%d not found", id)
	}
	return &dist, nil
}

// StartDistribution begins work on a slice. The first slice started also
// moves the task to IN_PROGRESS and stamps its actual start.
func StartDistribution(distID uint, now time.Time) (*models.Distribution, []events.Event, error) {
	dist, err := GetDistributionByID(distID)
	if err != nil {
		return nil, nil, err
	}
	if err := models.ValidateDistTransition(dist.Status, models.DistInProgress); err != nil {
		return nil, nil, err
	}

	var evts []events.Event
	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Distribution{}).Where("id = ?", distID).
			Update("status", models.DistInProgress).Error; err != nil {
			return err
		}

		task := dist.Task
		if task.Status == models.TaskPlanned || task.Status == models.TaskLate || task.Status == models.TaskExpired {
			if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).
				Updates(map[string]any{
					"status":       models.TaskInProgress,
					"actual_start": now,
				}).Error; err != nil {
				return err
			}
			evts = append(evts, events.New(events.TaskStarted, task.ID, distID, now, ""))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	dist.Status = models.DistInProgress
	return dist, evts, nil
}

// FinishDistribution completes a slice, recording the hours actually worked.
// When no active slice remains and at least one is DONE, the task completes
// and its actual end is stamped.
func FinishDistribution(distID uint, actualHours *float64, now time.Time) (*models.Distribution, []events.Event, error) {
	dist, err := GetDistributionByID(distID)
	if err != nil {
		return nil, nil, err
	}
	if err := models.ValidateDistTransition(dist.Status, models.DistDone); err != nil {
		return nil, nil, err
	}
	if actualHours != nil && *actualHours < 0 {
		return nil, nil, fmt.Errorf("actual hours cannot be negative")
	}

	var evts []events.Event
	err = DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": models.DistDone}
		if actualHours != nil {
			updates["actual_hours"] = *actualHours
		} else {
			updates["actual_hours"] = dist.PlannedHours
		}
		if err := tx.Model(&models.Distribution{}).Where("id = ?", distID).Updates(updates).Error; err != nil {
			return err
		}
		evts = append(evts, events.New(events.DistributionDone, dist.TaskID, distID, now, ""))
		return syncTaskAfterSliceChange(tx, dist.TaskID, now, &evts)
	})
	if err != nil {
		return nil, nil, err
	}

	reloaded, err := GetDistributionByID(distID)
	if err != nil {
		return nil, nil, err
	}
	return reloaded, evts, nil
}

// RescheduleDistribution moves one slice to a new date. The original is kept
// as RESCHEDULED and a fresh PENDING replacement carries the work, linked
// through the origin/replacement pair. Chains are capped so a slice cannot
// be pushed forward forever; the task's planned end stretches to cover the
// new date when needed.
func RescheduleDistribution(distID uint, newDate time.Time, reason models.Reason, comment string, now time.Time) (*models.Distribution, []events.Event, error) {
	if !models.ValidOperatorReason(reason) {
		return nil, nil, fmt.Errorf("invalid reschedule reason %q", reason)
	}

	dist, err := GetDistributionByID(distID)
	if err != nil {
		return nil, nil, err
	}
	if err := models.ValidateDistTransition(dist.Status, models.DistRescheduled); err != nil {
		return nil, nil, err
	}

	newDate = models.DateOnly(newDate)
	if models.SameDay(newDate, dist.Date) {
		return nil, nil, fmt.Errorf("slice #%d is already planned on %s", distID, newDate.Format("2006-01-02"))
	}

	depth, err := chainDepth(dist)
	if err != nil {
		return nil, nil, err
	}
	if depth >= models.MaxRescheduleChain {
		return nil, nil, fmt.Errorf("slice #%d has been rescheduled %d times; the chain is capped at %d",
			distID, depth, models.MaxRescheduleChain)
	}

	var clash int64
	err = DB.Model(&models.Distribution{}).
		Where("task_id = ? AND date >= ? AND date < ? AND status IN ?",
			dist.TaskID, newDate, newDate.Add(24*time.Hour), models.ActiveDistStatuses).
		Count(&clash).Error
	if err != nil {
		return nil, nil, err
	}
	if clash > 0 {
		return nil, nil, fmt.Errorf("task #%d already has an active slice on %s",
			dist.TaskID, newDate.Format("2006-01-02"))
	}

	var replacement models.Distribution
	var evts []events.Event
	err = DB.Transaction(func(tx *gorm.DB) error {
		replacement = models.Distribution{
			TaskID:       dist.TaskID,
			Reference:    newReference("DST"),
			Date:         newDate,
			PlannedHours: dist.PlannedHours,
			StartTime:    dist.StartTime,
			EndTime:      dist.EndTime,
			Status:       models.DistPending,
			OriginID:     &dist.ID,
		}
		if err := tx.Create(&replacement).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Distribution{}).Where("id = ?", dist.ID).
			Updates(map[string]any{
				"status":         models.DistRescheduled,
				"reason":         reason,
				"comment":        comment,
				"replacement_id": replacement.ID,
			}).Error; err != nil {
			return err
		}

		if newDate.After(models.DateOnly(dist.Task.PlannedEnd)) {
			if err := tx.Model(&models.Task{}).Where("id = ?", dist.TaskID).
				Update("planned_end", newDate).Error; err != nil {
				return err
			}
		}

		evts = append(evts, events.New(events.DistributionRescheduled, dist.TaskID, dist.ID, now,
			fmt.Sprintf("%s → %s (%s)", models.DateOnly(dist.Date).Format("2006-01-02"),
				newDate.Format("2006-01-02"), reason)))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &replacement, evts, nil
}

// chainDepth walks the origin links back to the first slice of the chain.
func chainDepth(dist *models.Distribution) (int, error) {
	depth := 0
	current := dist
	for current.OriginID != nil {
		depth++
		if depth > models.MaxRescheduleChain {
			break
		}
		var origin models.Distribution
		if err := DB.First(&origin, *current.OriginID).Error; err != nil {
			return depth, err
		}
		current = &origin
	}
	return depth, nil
}

// CancelDistribution cancels one slice with an operator reason and re-derives
// the task status from what remains.
func CancelDistribution(distID uint, reason models.Reason, comment string, now time.Time) (*models.Distribution, []events.Event, error) {
	if !models.ValidOperatorReason(reason) {
		return nil, nil, fmt.Errorf("invalid cancellation reason %q", reason)
	}

	dist, err := GetDistributionByID(distID)
	if err != nil {
		return nil, nil, err
	}
	if err := models.ValidateDistTransition(dist.Status, models.DistCancelled); err != nil {
		return nil, nil, err
	}

	var evts []events.Event
	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Distribution{}).Where("id = ?", distID).
			Updates(map[string]any{
				"status":  models.DistCancelled,
				"reason":  reason,
				"comment": comment,
			}).Error; err != nil {
			return err
		}
		evts = append(evts, events.New(events.DistributionCancelled, dist.TaskID, distID, now, string(reason)))
		return syncTaskAfterSliceChange(tx, dist.TaskID, now, &evts)
	})
	if err != nil {
		return nil, nil, err
	}

	reloaded, err := GetDistributionByID(distID)
	if err != nil {
		return nil, nil, err
	}
	return reloaded, evts, nil
}

// RestoreDistribution reopens a cancelled slice. A task that was fully
// cancelled through its slices goes back to PLANNED.
func RestoreDistribution(distID uint, now time.Time) (*models.Distribution, []events.Event, error) {
	dist, err := GetDistributionByID(distID)
	if err != nil {
		return nil, nil, err
	}
	if err := models.ValidateDistTransition(dist.Status, models.DistPending); err != nil {
		return nil, nil, err
	}

	var evts []events.Event
	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Distribution{}).Where("id = ?", distID).
			Updates(map[string]any{"status": models.DistPending, "reason": "", "comment": ""}).Error; err != nil {
			return err
		}
		if dist.Task.Status == models.TaskCancelled || dist.Task.Status == models.TaskExpired {
			if err := tx.Model(&models.Task{}).Where("id = ?", dist.TaskID).
				Update("status", models.TaskPlanned).Error; err != nil {
				return err
			}
		}
		evts = append(evts, events.New(events.DistributionRestored, dist.TaskID, distID, now, ""))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	reloaded, err := GetDistributionByID(distID)
	if err != nil {
		return nil, nil, err
	}
	return reloaded, evts, nil
}

// syncTaskAfterSliceChange re-derives the task status from its slices after
// one of them changed terminally:
//   - every slice cancelled: the task is CANCELLED
//   - no active slice left and at least one DONE: the task is DONE
//   - no active slice, none done, not all cancelled: back to PLANNED
//   - active slices remain: the task status is left alone
//
// DONE and CANCELLED tasks set by hand stay put.
func syncTaskAfterSliceChange(tx *gorm.DB, taskID uint, now time.Time, evts *[]events.Event) error {
	var task models.Task
	if err := tx.First(&task, taskID).Error; err != nil {
		return err
	}
	if task.Status == models.TaskDone || task.Status == models.TaskCancelled {
		return nil
	}

	var dists []models.Distribution
	if err := tx.Where("task_id = ?", taskID).Find(&dists).Error; err != nil {
		return err
	}
	if len(dists) == 0 {
		return nil
	}

	active, done, cancelled := 0, 0, 0
	for _, d := range dists {
		switch {
		case d.Status.IsActive():
			active++
		case d.Status == models.DistDone:
			done++
		case d.Status == models.DistCancelled:
			cancelled++
		}
	}

	switch {
	case active > 0:
		return nil
	case done > 0:
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Updates(map[string]any{"status": models.TaskDone, "actual_end": now}).Error; err != nil {
			return err
		}
		*evts = append(*evts, events.New(events.TaskDone, taskID, 0, now, ""))
	case cancelled == len(dists):
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Update("status", models.TaskCancelled).Error; err != nil {
			return err
		}
		*evts = append(*evts, events.New(events.TaskCancelled, taskID, 0, now, "all slices cancelled"))
	default:
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Update("status", models.TaskPlanned).Error; err != nil {
			return err
		}
	}
	return nil
}
