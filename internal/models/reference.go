package models

import "time"

// Measurement units for productivity ratios.
const (
	UnitArea   = "AREA"   // m² per hour
	UnitLength = "LENGTH" // m per hour
	UnitCount  = "COUNT"  // objects per hour
)

// ProductivityRatio maps (task-type, object-type) to a processing rate.
// Read-only reference data for the workload estimator.
type ProductivityRatio struct {
	ID uint `gorm:"primarykey" json:"id"`

	TaskType   string  `gorm:"not null;index:idx_ratio,unique" json:"task_type"`
	ObjectType string  `gorm:"not null;index:idx_ratio,unique" json:"object_type"`
	Rate       float64 `gorm:"not null" json:"rate"` // units processed per hour, > 0
	Unit       string  `gorm:"not null" json:"unit"` // AREA | LENGTH | COUNT
	Active     bool    `json:"active"`

	Description string `json:"description"`
}

// CrewScheduleDay is the explicit (crew, weekday) workable-hours override.
// Weekday follows time.Weekday (0 = Sunday).
type CrewScheduleDay struct {
	ID      uint    `gorm:"primarykey" json:"id"`
	CrewID  uint    `gorm:"not null;index:idx_sched,unique" json:"crew_id"`
	Weekday int     `gorm:"not null;index:idx_sched,unique" json:"weekday"`
	Hours   float64 `gorm:"not null" json:"hours"`
}

// Holiday zeroes workable hours for every crew on its date.
// Active carries no column default: a zero-valued bool behind a true
// default would be dropped from the INSERT and stored as true.
type Holiday struct {
	ID     uint      `gorm:"primarykey" json:"id"`
	Date   time.Time `gorm:"not null;uniqueIndex" json:"date"`
	Label  string    `json:"label"`
	Active bool      `json:"active"`
}

// Absence is one member's leave interval, mirrored from the HR service.
// Only approved absences count against crew availability.
type Absence struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	MemberID uint      `gorm:"not null;index" json:"member_id"`
	From     time.Time `gorm:"not null" json:"from"`
	To       time.Time `gorm:"not null" json:"to"`
	Approved bool      `gorm:"default:false" json:"approved"`
	Kind     string    `json:"kind"`
}

// Covers reports whether the absence interval includes the given day.
func (a *Absence) Covers(day time.Time) bool {
	d := DateOnly(day)
	return !d.Before(DateOnly(a.From)) && !d.After(DateOnly(a.To))
}

// LaborEntry is a manual per-worker hours record for a task, used as
// precedence tier 3 of the total-worked-time query.
type LaborEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TaskID uint    `gorm:"not null;index" json:"task_id"`
	Worker string  `gorm:"not null" json:"worker"`
	Hours  float64 `gorm:"not null" json:"hours"`
	Note   string  `json:"note"`
}
