package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mgarnier/crewplan/internal/calendar"
	"github.com/mgarnier/crewplan/internal/estimate"
	"github.com/mgarnier/crewplan/internal/events"
	"github.com/mgarnier/crewplan/internal/models"
)

// DaySpec is one requested day slice, with an optional time window.
type DaySpec struct {
	Date      time.Time
	Hours     float64
	StartTime string
	EndTime   string
}

// CreateTaskRequest holds the data needed to create a new task.
type CreateTaskRequest struct {
	TaskType    string
	Date        time.Time // planned start and end: one calendar day
	Priority    int       // 1..5, 0 means default (3)
	Description string
	Comments    string
	CrewNames   []string
	Objects     []models.TaskObject
	ManualHours *float64 // pins the estimate and sets the manual-override flag
	Slices      []DaySpec
	ComplaintID *uint
}

// CreateTask creates a task with its day slices. The estimate is computed
// from the linked objects and the active ratios unless a manual value pins
// it. When no slices are supplied they are planned from the estimate and
// the first crew's calendar.
func CreateTask(req CreateTaskRequest) (*models.Task, []events.Event, error) {
	if strings.TrimSpace(req.TaskType) == "" {
		return nil, nil, fmt.Errorf("task type is required")
	}
	if req.Priority < 0 || req.Priority > 5 {
		return nil, nil, fmt.Errorf("priority must be between 1 and 5")
	}
	if req.Priority == 0 {
		req.Priority = 3
	}

	day := models.DateOnly(req.Date)
	task := models.Task{
		Reference:    newReference("TSK"),
		TaskType:     req.TaskType,
		PlannedStart: day,
		PlannedEnd:   day,
		Priority:     req.Priority,
		Status:       models.TaskPlanned,
		Description:  req.Description,
		Comments:     req.Comments,
		ComplaintID:  req.ComplaintID,
		Objects:      req.Objects,
	}

	if len(req.CrewNames) > 0 {
		crews, err := findOrCreateCrews(req.CrewNames)
		if err != nil {
			return nil, nil, err
		}
		task.Crews = crews
	}

	var warnings []string
	if req.ManualHours != nil {
		h := *req.ManualHours
		task.EstimatedHours = &h
		task.ManualEstimate = true
	} else if len(req.Objects) > 0 {
		result, err := estimateFor(req.TaskType, req.Objects)
		if err != nil {
			return nil, nil, err
		}
		warnings = result.Warnings
		if result.Known() {
			h := result.Hours
			task.EstimatedHours = &h
		}
	}

	slices := req.Slices
	if len(slices) == 0 && task.EstimatedHours != nil && *task.EstimatedHours > 0 {
		var crewID uint
		if len(task.Crews) > 0 {
			crewID = task.Crews[0].ID
		}
		planned, err := estimate.SpreadHours(DB, crewID, *task.EstimatedHours, day, day)
		if err != nil {
			return nil, nil, err
		}
		for _, s := range planned {
			slices = append(slices, DaySpec{Date: s.Date, Hours: s.Hours})
		}
	}
	for _, s := range slices {
		sliceDay := models.DateOnly(s.Date)
		if sliceDay.Before(day) {
			return nil, nil, fmt.Errorf("day slice %s lies before the planned day %s",
				sliceDay.Format("2006-01-02"), day.Format("2006-01-02"))
		}
		// Explicit slices past the planned day stretch the task's end.
		if sliceDay.After(task.PlannedEnd) {
			task.PlannedEnd = sliceDay
		}
		task.Distributions = append(task.Distributions, models.Distribution{
			Reference:    newReference("DST"),
			Date:         sliceDay,
			PlannedHours: s.Hours,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			Status:       models.DistPending,
		})
	}

	if err := DB.Create(&task).Error; err != nil {
		return nil, nil, err
	}

	evts := []events.Event{events.New(events.TaskCreated, task.ID, 0, time.Now(), task.Reference)}
	for _, w := range warnings {
		evts = append(evts, events.New(events.TaskCreated, task.ID, 0, time.Now(), "warning: "+w))
	}
	return &task, evts, nil
}

// GetTaskByID retrieves a task with its relations. Soft-deleted tasks are
// excluded by gorm's DeletedAt handling.
func GetTaskByID(id uint) (*models.Task, error) {
	var task models.Task
	err := DB.Preload("Crews").Preload("Objects").Preload("Distributions").First(&task, id).Error
	if err != nil {
		return nil, fmt.Errorf("task #%d not found", id)
	}
	return &task, nil
}

// TaskFilter narrows GetTasks.
type TaskFilter struct {
	Status   models.TaskStatus
	TaskType string
	CrewName string
	Day      *time.Time
}

// GetTasks retrieves tasks with optional filters, ordered by planned start.
func GetTasks(f TaskFilter) ([]models.Task, error) {
	q := DB.Preload("Crews").Preload("Distributions").Order("planned_start ASC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TaskType != "" {
		q = q.Where("task_type = ?", f.TaskType)
	}
	if f.CrewName != "" {
		q = q.Joins("JOIN task_crews ON task_crews.task_id = tasks.id").
			Joins("JOIN crews ON crews.id = task_crews.crew_id").
			Where("crews.name = ?", f.CrewName)
	}
	if f.Day != nil {
		day := models.DateOnly(*f.Day)
		q = q.Where("planned_start < ? AND planned_end >= ?", day.Add(24*time.Hour), day)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// RescheduleTask moves a task to new planned bounds. Slices that were
// auto-cancelled by expiration are restored to PENDING no matter which
// direction the dates moved; remaining active slices are shifted by the same
// day offset. A task left without any actionable slice gets a fresh plan
// across the workable days of the new range.
func RescheduleTask(taskID uint, newStart, newEnd time.Time, now time.Time) (*models.Task, []events.Event, error) {
	if newEnd.Before(newStart) {
		return nil, nil, fmt.Errorf("planned end %s lies before planned start %s",
			newEnd.Format("2006-01-02"), newStart.Format("2006-01-02"))
	}

	task, err := GetTaskByID(taskID)
	if err != nil {
		return nil, nil, err
	}
	if task.Status == models.TaskDone || task.Status == models.TaskCancelled {
		return nil, nil, fmt.Errorf("task #%d is %s and cannot be rescheduled", taskID, task.Status)
	}

	newStart = models.DateOnly(newStart)
	newEnd = models.DateOnly(newEnd)
	offsetDays := int(newStart.Sub(models.DateOnly(task.PlannedStart)).Hours() / 24)

	var evts []events.Event
	err = DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"planned_start": newStart,
			"planned_end":   newEnd,
		}
		if task.Status == models.TaskExpired || task.Status == models.TaskLate {
			updates["status"] = models.TaskPlanned
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
			return err
		}

		// Reopen work the expiry sweep closed. Restoration is unconditional:
		// it must not depend on whether the new bounds are past or future.
		var restored []models.Distribution
		if err := tx.Where("task_id = ? AND status = ? AND reason = ?",
			taskID, models.DistCancelled, models.ReasonExpiration).Find(&restored).Error; err != nil {
			return err
		}
		if len(restored) > 0 {
			if err := tx.Model(&models.Distribution{}).
				Where("task_id = ? AND status = ? AND reason = ?",
					taskID, models.DistCancelled, models.ReasonExpiration).
				Updates(map[string]any{"status": models.DistPending, "reason": ""}).Error; err != nil {
				return err
			}
			for _, d := range restored {
				evts = append(evts, events.New(events.DistributionRestored, taskID, d.ID, now, ""))
			}
		}

		// Shift every still-actionable slice into the new range.
		if offsetDays != 0 {
			var active []models.Distribution
			if err := tx.Where("task_id = ? AND status IN ?", taskID,
				[]models.DistStatus{models.DistPending, models.DistLate}).Find(&active).Error; err != nil {
				return err
			}
			for _, d := range active {
				if err := tx.Model(&models.Distribution{}).Where("id = ?", d.ID).
					Updates(map[string]any{
						"date":   models.DateOnly(d.Date).AddDate(0, 0, offsetDays),
						"status": models.DistPending,
					}).Error; err != nil {
					return err
				}
			}
		} else {
			// No date shift, but LATE slices go back to PENDING; the refresh
			// job re-derives lateness against the new bounds.
			if err := tx.Model(&models.Distribution{}).
				Where("task_id = ? AND status = ?", taskID, models.DistLate).
				Update("status", models.DistPending).Error; err != nil {
				return err
			}
		}

		// Guarantee at least one PENDING slice per workable day of the range.
		var crewID uint
		if len(task.Crews) > 0 {
			crewID = task.Crews[0].ID
		}
		if err := ensureCoverage(tx, task, crewID, newStart, newEnd, now, &evts); err != nil {
			return err
		}

		evts = append(evts, events.New(events.TaskRescheduled, taskID, 0, now,
			fmt.Sprintf("%s → %s", newStart.Format("2006-01-02"), newEnd.Format("2006-01-02"))))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	reloaded, err := GetTaskByID(taskID)
	if err != nil {
		return nil, nil, err
	}
	return reloaded, evts, nil
}

// ensureCoverage creates a PENDING slice for every workable day in
// [start, end] that has no active slice yet. Hours come from the estimate
// spread across the gap days, with a 1h floor so a slice is never empty.
func ensureCoverage(tx *gorm.DB, task *models.Task, crewID uint, start, end, now time.Time, evts *[]events.Event) error {
	days, err := calendar.WorkableDays(tx, crewID, start, end)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		days = []calendar.DayHours{{Date: models.DateOnly(start), Hours: 0}}
	}

	var active []models.Distribution
	if err := tx.Where("task_id = ? AND status IN ?", task.ID, models.ActiveDistStatuses).Find(&active).Error; err != nil {
		return err
	}
	covered := map[string]bool{}
	for _, d := range active {
		covered[models.DateOnly(d.Date).Format("2006-01-02")] = true
	}

	var missing []calendar.DayHours
	for _, day := range days {
		if !covered[day.Date.Format("2006-01-02")] {
			missing = append(missing, day)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	perDay := 1.0
	if task.EstimatedHours != nil && *task.EstimatedHours > 0 {
		perDay = *task.EstimatedHours / float64(len(days))
	}
	for _, day := range missing {
		hours := perDay
		if day.Hours > 0 && hours > day.Hours {
			hours = day.Hours
		}
		dist := models.Distribution{
			TaskID:       task.ID,
			Reference:    newReference("DST"),
			Date:         day.Date,
			PlannedHours: hours,
			Status:       models.DistPending,
		}
		if err := tx.Create(&dist).Error; err != nil {
			return err
		}
		*evts = append(*evts, events.New(events.DistributionRepaired, task.ID, dist.ID, now,
			day.Date.Format("2006-01-02")))
	}
	return nil
}

// CancelTask is the manual terminal transition. Every still-active slice is
// cancelled alongside with the TASK_CANCELLED system reason.
func CancelTask(taskID uint, now time.Time) (*models.Task, []events.Event, error) {
	task, err := GetTaskByID(taskID)
	if err != nil {
		return nil, nil, err
	}
	if task.Status == models.TaskDone || task.Status == models.TaskCancelled {
		return nil, nil, fmt.Errorf("task #%d is already %s", taskID, task.Status)
	}

	var evts []events.Event
	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Update("status", models.TaskCancelled).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Distribution{}).
			Where("task_id = ? AND status IN ?", taskID, models.ActiveDistStatuses).
			Updates(map[string]any{"status": models.DistCancelled, "reason": models.ReasonTaskCancelled})
		if res.Error != nil {
			return res.Error
		}
		evts = append(evts, events.New(events.TaskCancelled, taskID, 0, now,
			fmt.Sprintf("%d slice(s) cancelled", res.RowsAffected)))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	task.Status = models.TaskCancelled
	return task, evts, nil
}

// ValidateTask records the supervisor's verdict on a DONE task.
func ValidateTask(taskID uint, approved bool, rating *int, comment string, now time.Time) (*models.Task, []events.Event, error) {
	task, err := GetTaskByID(taskID)
	if err != nil {
		return nil, nil, err
	}
	if task.Status != models.TaskDone {
		return nil, nil, fmt.Errorf("task #%d is %s; only DONE tasks can be validated", taskID, task.Status)
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, nil, fmt.Errorf("quality rating must be between 1 and 5")
	}

	verdict := models.ValidationApproved
	if !approved {
		verdict = models.ValidationRejected
	}
	updates := map[string]any{
		"validation":         verdict,
		"validated_at":       now,
		"validation_comment": comment,
	}
	if rating != nil {
		updates["quality_rating"] = *rating
	}
	if err := DB.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
		return nil, nil, err
	}

	task.Validation = verdict
	evts := []events.Event{events.New(events.TaskValidated, taskID, 0, now, string(verdict))}
	return task, evts, nil
}

// DeleteTask soft-deletes a task; gorm stamps DeletedAt and all active
// queries exclude it from then on.
func DeleteTask(taskID uint, now time.Time) ([]events.Event, error) {
	task, err := GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if err := DB.Delete(&models.Task{}, task.ID).Error; err != nil {
		return nil, err
	}
	return []events.Event{events.New(events.TaskDeleted, task.ID, 0, now, task.Reference)}, nil
}

// ResetEstimate clears the manual-override flag and recomputes the estimate
// from the current ratios and linked objects.
func ResetEstimate(taskID uint) (*models.Task, error) {
	task, err := GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}

	result, err := estimateFor(task.TaskType, task.Objects)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"manual_estimate": false}
	if result.Known() || len(task.Objects) == 0 {
		updates["estimated_hours"] = result.Hours
	} else {
		updates["estimated_hours"] = nil
	}
	if err := DB.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return GetTaskByID(taskID)
}

// RecomputeEstimate refreshes the estimate after an edit unless the
// manual-override flag freezes it.
func RecomputeEstimate(taskID uint) (*models.Task, error) {
	task, err := GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task.ManualEstimate {
		return task, nil
	}
	return ResetEstimate(taskID)
}

func estimateFor(taskType string, objects []models.TaskObject) (estimate.Result, error) {
	var ratios []models.ProductivityRatio
	if err := DB.Where("task_type = ? AND active = ?", taskType, true).Find(&ratios).Error; err != nil {
		return estimate.Result{}, err
	}
	return estimate.Hours(taskType, objects, ratios), nil
}

// findOrCreateCrews resolves crew names, creating unknown ones.
func findOrCreateCrews(names []string) ([]models.Crew, error) {
	var crews []models.Crew
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var crew models.Crew
		err := DB.Where("name = ?", name).First(&crew).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			crew = models.Crew{Name: name}
			if err := DB.Create(&crew).Error; err != nil {
				return nil, err
			}
		}

		crews = append(crews, crew)
	}
	return crews, nil
}

func newReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
