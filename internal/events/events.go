// Package events carries the domain events emitted by mutating operations.
// Every service that changes task or distribution state returns the events
// it produced; callers hand them to a Sink. Delivery is fire-and-forget:
// a sink that fails never fails the state change that produced the event.
package events

import "time"

// Event types.
const (
	TaskCreated             = "task.created"
	TaskRescheduled         = "task.rescheduled"
	TaskStarted             = "task.started"
	TaskLate                = "task.late"
	TaskExpired             = "task.expired"
	TaskDone                = "task.done"
	TaskCancelled           = "task.cancelled"
	TaskValidated           = "task.validated"
	TaskDeleted             = "task.deleted"
	DistributionLate        = "distribution.late"
	DistributionDone        = "distribution.done"
	DistributionRescheduled = "distribution.rescheduled"
	DistributionCancelled   = "distribution.cancelled"
	DistributionRestored    = "distribution.restored"
	DistributionRepaired    = "distribution.repaired"
)

// Event is one domain fact: something that already happened.
type Event struct {
	Type           string    `json:"type"`
	TaskID         uint      `json:"task_id,omitempty"`
	DistributionID uint      `json:"distribution_id,omitempty"`
	At             time.Time `json:"at"`
	Detail         string    `json:"detail,omitempty"`
}

// Sink consumes events. Implementations must not block the caller for long
// and must swallow their own delivery errors.
type Sink interface {
	Publish(Event)
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Publish(Event) {}

// Recorder collects events in memory; used by tests and by commands that
// print what happened after the fact.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(e Event) {
	r.Events = append(r.Events, e)
}

// New builds an event stamped with now.
func New(eventType string, taskID, distID uint, at time.Time, detail string) Event {
	return Event{Type: eventType, TaskID: taskID, DistributionID: distID, At: at, Detail: detail}
}
