package models

import (
	"time"

	"gorm.io/gorm"
)

// Task represents one unit of scheduled maintenance work. Its planned bounds
// always lie on a single calendar day; multi-day work is expressed as one
// Distribution per day.
type Task struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Reference string `gorm:"uniqueIndex" json:"reference"`
	TaskType  string `gorm:"not null" json:"task_type"`

	PlannedStart time.Time  `gorm:"not null" json:"planned_start"`
	PlannedEnd   time.Time  `gorm:"not null" json:"planned_end"`
	ActualStart  *time.Time `json:"actual_start"`
	ActualEnd    *time.Time `json:"actual_end"`

	Priority       int        `gorm:"default:3" json:"priority"` // 1=very low .. 5=urgent
	Status         TaskStatus `gorm:"default:PLANNED" json:"status"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ManualEstimate bool       `gorm:"default:false" json:"manual_estimate"` // freezes EstimatedHours against recomputation

	Validation        ValidationStatus `gorm:"default:PENDING" json:"validation"`
	ValidatedAt       *time.Time       `json:"validated_at"`
	ValidationComment string           `json:"validation_comment"`
	QualityRating     *int             `json:"quality_rating"` // 1..5, set at validation

	// Worked-time manual override, precedence tier 1.
	ManualHours   *float64   `json:"manual_hours"`
	ManualHoursBy string     `json:"manual_hours_by"`
	ManualHoursAt *time.Time `json:"manual_hours_at"`

	Description string `json:"description"`
	Comments    string `json:"comments"`

	ComplaintID        *uint `json:"complaint_id"`         // originating complaint ticket, external
	RecurrenceParentID *uint `json:"recurrence_parent_id"` // source task for recurrence clones

	Notified  bool `gorm:"default:false" json:"notified"`
	Confirmed bool `gorm:"default:false" json:"confirmed"`

	// Relationships
	Crews         []Crew         `gorm:"many2many:task_crews;" json:"crews"`
	Objects       []TaskObject   `gorm:"foreignKey:TaskID" json:"objects"`
	Distributions []Distribution `gorm:"foreignKey:TaskID" json:"distributions"`
}

// DurationDays returns the task's planned duration in whole days, both
// bounds inclusive. With the single-day invariant this is 1 for well-formed
// tasks, but recurrence validation computes it rather than assuming it.
func (t *Task) DurationDays() int {
	return int(DateOnly(t.PlannedEnd).Sub(DateOnly(t.PlannedStart)).Hours()/24) + 1
}

// TaskObject is a snapshot of one linked inventory object. Inventory storage
// is external; the engine keeps the object reference plus the measured
// quantities it needs for workload estimation.
type TaskObject struct {
	ID     uint `gorm:"primarykey" json:"id"`
	TaskID uint `gorm:"not null;index" json:"task_id"`

	ObjectRef  string  `json:"object_ref"`  // external inventory id
	ObjectType string  `json:"object_type"` // e.g. "lawn", "hedge", "tree"
	Kind       string  `json:"kind"`        // point | line | polygon
	AreaDeg2   float64 `json:"area_deg2"`   // polygonal objects, square degrees
	LengthDeg  float64 `json:"length_deg"`  // linear objects, degrees
	Latitude   float64 `json:"latitude"`    // centroid latitude for the meter conversion
}

// Crew is the minimal mirror of the HR service's crew contract.
type Crew struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	Members []CrewMember      `gorm:"foreignKey:CrewID" json:"members"`
	Days    []CrewScheduleDay `gorm:"foreignKey:CrewID" json:"days"`
	Tasks   []Task            `gorm:"many2many:task_crews;" json:"-"`
}

// CrewMember is one worker on a crew.
type CrewMember struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	CrewID uint   `gorm:"not null;index" json:"crew_id"`
	Name   string `gorm:"not null" json:"name"`
	Active bool   `json:"active"`

	Absences []Absence `gorm:"foreignKey:MemberID" json:"absences"`
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
