package models

import "fmt"

// TaskStatus is the lifecycle state of a Task. LATE and EXPIRED are derived
// by the reconciliation jobs from the passage of time; they are never set
// directly by an operator action.
type TaskStatus string

const (
	TaskPlanned    TaskStatus = "PLANNED"
	TaskLate       TaskStatus = "LATE"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
	TaskExpired    TaskStatus = "EXPIRED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// ValidationStatus is the supervisor's post-completion verdict.
type ValidationStatus string

const (
	ValidationPending  ValidationStatus = "PENDING"
	ValidationApproved ValidationStatus = "APPROVED"
	ValidationRejected ValidationStatus = "REJECTED"
)

// DistStatus is the state of one day slice of a Task.
type DistStatus string

const (
	DistPending     DistStatus = "PENDING"
	DistLate        DistStatus = "LATE"
	DistInProgress  DistStatus = "IN_PROGRESS"
	DistDone        DistStatus = "DONE"
	DistRescheduled DistStatus = "RESCHEDULED"
	DistCancelled   DistStatus = "CANCELLED"
)

// Reason is the code attached to a rescheduled or cancelled distribution.
// The system reasons are reserved for the reconciliation jobs.
type Reason string

const (
	ReasonWeather       Reason = "WEATHER"
	ReasonAbsence       Reason = "ABSENCE"
	ReasonEquipment     Reason = "EQUIPMENT"
	ReasonClient        Reason = "CLIENT"
	ReasonUrgent        Reason = "URGENT"
	ReasonOther         Reason = "OTHER"
	ReasonExpiration    Reason = "EXPIRATION"     // system: owning task expired
	ReasonTaskCancelled Reason = "TASK_CANCELLED" // system: owning task cancelled
)

// OperatorReasons are the codes accepted on manual reschedule/cancel actions.
var OperatorReasons = []Reason{
	ReasonWeather, ReasonAbsence, ReasonEquipment,
	ReasonClient, ReasonUrgent, ReasonOther,
}

// ActiveDistStatuses are the states in which a slice still represents work
// to be done (or being done).
var ActiveDistStatuses = []DistStatus{DistPending, DistLate, DistInProgress}

// distTransitions maps each distribution status to the statuses it may move
// to. DONE and RESCHEDULED are terminal; a RESCHEDULED slice lives on through
// its replacement. CANCELLED may only go back to PENDING (restoration).
var distTransitions = map[DistStatus][]DistStatus{
	DistPending:     {DistInProgress, DistRescheduled, DistCancelled},
	DistLate:        {DistInProgress, DistRescheduled, DistCancelled},
	DistInProgress:  {DistDone, DistCancelled},
	DistDone:        {},
	DistRescheduled: {},
	DistCancelled:   {DistPending},
}

// ValidateDistTransition reports whether from -> to is an allowed
// distribution status change. Same-status is always allowed (no-op).
func ValidateDistTransition(from, to DistStatus) error {
	if from == to {
		return nil
	}
	for _, allowed := range distTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("distribution transition %s → %s not allowed", from, to)
}

// IsActive reports whether the slice still represents actionable work.
func (s DistStatus) IsActive() bool {
	return s == DistPending || s == DistLate || s == DistInProgress
}

// IsTerminal reports whether no further transition is possible.
func (s DistStatus) IsTerminal() bool {
	return s == DistDone || s == DistRescheduled
}

// IsTerminal reports whether the task status admits no further work.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskDone || s == TaskCancelled
}

// ValidOperatorReason reports whether the code may be used on a manual
// reschedule or cancel action.
func ValidOperatorReason(reason Reason) bool {
	for _, r := range OperatorReasons {
		if r == reason {
			return true
		}
	}
	return false
}
