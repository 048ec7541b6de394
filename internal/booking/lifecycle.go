// Package booking holds the pure domain logic of the reservation
// subsystem: the lifecycle state machine, deposit resolution, occupancy
// window math and booking code generation. Nothing here touches the
// database; persistence lives in internal/repository and orchestration
// in the handlers, so this package stays unit-testable in isolation.
package booking

import (
	"errors"
	"time"

	"github.com/sittara/table-reservation/internal/model"
)

// Event names the staff/user actions that drive reservation
// transitions. Cancel is available to both the owning user and staff;
// the remaining events are staff-only.
type Event string

const (
	EventConfirm  Event = "confirm"
	EventArrive   Event = "arrive"
	EventComplete Event = "complete"
	EventNoShow   Event = "no_show"
	EventCancel   Event = "cancel"
)

// ErrInvalidTransition is returned when an event is not legal from the
// reservation's current status. Terminal states (completed, cancelled,
// no_show) accept no events at all.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrDepositUnpaid is returned when confirming a reservation whose
// slot requires a deposit that has not been paid yet.
var ErrDepositUnpaid = errors.New("deposit required before confirmation")

// transitions encodes the state graph. Absence means the event is not
// legal from that status.
var transitions = map[string]map[Event]string{
	model.StatusPending: {
		EventConfirm: model.StatusConfirmed,
		EventCancel:  model.StatusCancelled,
	},
	model.StatusConfirmed: {
		EventArrive: model.StatusArrived,
		EventCancel: model.StatusCancelled,
		EventNoShow: model.StatusNoShow,
	},
	model.StatusArrived: {
		EventComplete: model.StatusCompleted,
		EventNoShow:   model.StatusNoShow,
	},
}

// Next returns the status that applying ev to the current status
// yields, or ErrInvalidTransition when the event is not legal. Statuses
// only move forward through the graph; there is no path out of a
// terminal state and no un-cancel.
func Next(status string, ev Event) (string, error) {
	if m, ok := transitions[status]; ok {
		if to, ok := m[ev]; ok {
			return to, nil
		}
	}
	return "", ErrInvalidTransition
}

// ParseEvent validates a client-supplied event name.
func ParseEvent(s string) (Event, bool) {
	switch Event(s) {
	case EventConfirm, EventArrive, EventComplete, EventNoShow, EventCancel:
		return Event(s), true
	}
	return "", false
}

// CanCancel reports whether a reservation in the given status may
// still be cancelled.
func CanCancel(status string) bool {
	return status == model.StatusPending || status == model.StatusConfirmed
}

// GuardConfirm enforces the deposit gate: a reservation whose slot
// requires a deposit can never reach confirmed while unpaid.
func GuardConfirm(res *model.Reservation) error {
	if res.DepositRequired && !res.DepositPaid {
		return ErrDepositUnpaid
	}
	return nil
}

// ArrivalWindow bounds when staff may mark a guest as arrived relative
// to the slot start.
type ArrivalWindow struct {
	Early time.Duration // how early before the slot arrival is accepted
	Grace time.Duration // how long after the slot before no_show applies
}

// Contains reports whether now falls inside [start-Early, start+Grace].
func (w ArrivalWindow) Contains(start, now time.Time) bool {
	return !now.Before(start.Add(-w.Early)) && !now.After(start.Add(w.Grace))
}

// NoShowEligible reports whether the grace period after the slot start
// has elapsed, permitting a no_show transition.
func (w ArrivalWindow) NoShowEligible(start, now time.Time) bool {
	return now.After(start.Add(w.Grace))
}
