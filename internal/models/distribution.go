package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxRescheduleChain caps how many times one slice of work can be pushed to
// another day before the operator has to finish or cancel it.
const MaxRescheduleChain = 5

// Distribution is the planned/actual work slice of one Task on one calendar
// day. Distributions are never physically deleted; cancellation is a status.
type Distribution struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TaskID    uint   `gorm:"not null;index" json:"task_id"`
	Reference string `json:"reference"`

	Date         time.Time  `gorm:"not null;index" json:"date"`
	PlannedHours float64    `gorm:"not null" json:"planned_hours"`
	ActualHours  *float64   `json:"actual_hours"`
	StartTime    string     `json:"start_time"` // planned time of day, "08:00", optional
	EndTime      string     `json:"end_time"`   // "17:00", optional
	Status       DistStatus `gorm:"default:PENDING;index" json:"status"`
	Reason       Reason     `json:"reason"` // reschedule/cancel reason code
	Comment      string     `json:"comment"`

	// Reschedule chain. OriginID points at the slice this one replaces,
	// ReplacementID at the slice that replaces this one. Both are set only
	// at reschedule time, on freshly created rows, so the chain cannot loop.
	OriginID      *uint `json:"origin_id"`
	ReplacementID *uint `json:"replacement_id"`

	Task Task `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// StartDeadline returns the moment this slice counts as late: its planned
// start time of day when one is set, otherwise the end of its calendar day.
func (d *Distribution) StartDeadline() time.Time {
	day := DateOnly(d.Date)
	if d.StartTime != "" {
		if t, err := time.Parse("15:04", d.StartTime); err == nil {
			return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
		}
	}
	return day.Add(24 * time.Hour)
}
