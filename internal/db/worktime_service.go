package db

import (
	"fmt"
	"time"

	"github.com/mgarnier/crewplan/internal/models"
)

// Worked-time sources, strongest first. The resolver walks this order and
// stops at the first tier that yields a value.
const (
	SourceManual   = "MANUAL"   // supervisor override on the task
	SourceActual   = "ACTUAL"   // sum of actual hours on DONE slices
	SourceLabor    = "LABOR"    // sum of logged labor entries
	SourceEstimate = "ESTIMATE" // task estimate
	SourcePlanned  = "PLANNED"  // sum of planned hours on the slices
	SourceNone     = "NONE"
)

// WorkedTime is the resolved figure with its provenance. Reliable marks the
// two tiers grounded in observed work rather than planning data.
type WorkedTime struct {
	Hours    float64
	Source   string
	Reliable bool
}

// ResolveWorkedTime computes the task's worked hours following the source
// precedence. Zero is a legitimate value at the MANUAL tier only; lower
// tiers treat zero as "nothing recorded" and fall through.
func ResolveWorkedTime(taskID uint) (WorkedTime, error) {
	task, err := GetTaskByID(taskID)
	if err != nil {
		return WorkedTime{}, err
	}

	if task.ManualHours != nil {
		return WorkedTime{Hours: *task.ManualHours, Source: SourceManual, Reliable: true}, nil
	}

	actual := 0.0
	planned := 0.0
	for _, d := range task.Distributions {
		if d.Status == models.DistDone && d.ActualHours != nil {
			actual += *d.ActualHours
		}
		if d.Status.IsActive() || d.Status == models.DistDone {
			planned += d.PlannedHours
		}
	}
	if actual > 0 {
		return WorkedTime{Hours: actual, Source: SourceActual, Reliable: true}, nil
	}

	var labor float64
	err = DB.Model(&models.LaborEntry{}).Where("task_id = ?", taskID).
		Select("COALESCE(SUM(hours), 0)").Scan(&labor).Error
	if err != nil {
		return WorkedTime{}, err
	}
	if labor > 0 {
		return WorkedTime{Hours: labor, Source: SourceLabor}, nil
	}

	if task.EstimatedHours != nil && *task.EstimatedHours > 0 {
		return WorkedTime{Hours: *task.EstimatedHours, Source: SourceEstimate}, nil
	}

	if planned > 0 {
		return WorkedTime{Hours: planned, Source: SourcePlanned}, nil
	}

	return WorkedTime{Source: SourceNone}, nil
}

// SetManualHours pins the worked time at the strongest tier, recording who
// set it and when. A negative value is rejected; zero is allowed and means
// "no time was worked", overriding everything below.
func SetManualHours(taskID uint, hours float64, by string, now time.Time) (*models.Task, error) {
	if hours < 0 {
		return nil, fmt.Errorf("manual hours cannot be negative")
	}
	task, err := GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]any{
		"manual_hours":    hours,
		"manual_hours_by": by,
		"manual_hours_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetTaskByID(taskID)
}

// ClearManualHours removes the override; resolution falls back to the
// observed tiers.
func ClearManualHours(taskID uint) (*models.Task, error) {
	task, err := GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	err = DB.Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]any{
		"manual_hours":    nil,
		"manual_hours_by": "",
		"manual_hours_at": nil,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetTaskByID(taskID)
}

// LogLabor records hours a worker reports against a task.
func LogLabor(taskID uint, worker string, hours float64, note string) (*models.LaborEntry, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("labor hours must be positive")
	}
	if worker == "" {
		return nil, fmt.Errorf("worker name is required")
	}
	if _, err := GetTaskByID(taskID); err != nil {
		return nil, err
	}

	entry := models.LaborEntry{TaskID: taskID, Worker: worker, Hours: hours, Note: note}
	if err := DB.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetLaborEntries lists the labor log for a task, oldest first.
func GetLaborEntries(taskID uint) ([]models.LaborEntry, error) {
	var entries []models.LaborEntry
	err := DB.Where("task_id = ?", taskID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}
