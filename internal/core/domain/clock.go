package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventKind is the type of a clock event and, for the latest event of a user,
// the user's attendance state.
type EventKind string

const (
	KindIn         EventKind = "IN"
	KindOut        EventKind = "OUT"
	KindBreakStart EventKind = "BREAK_START"
	KindBreakEnd   EventKind = "BREAK_END"
)

// kindNone stands for a user without any recorded event.
const kindNone EventKind = ""

// validTransitions defines the allowed state machine transitions.
// A user without events behaves like one whose latest event is OUT.
var validTransitions = map[EventKind][]EventKind{
	kindNone:       {KindIn},
	KindOut:        {KindIn},
	KindIn:         {KindOut, KindBreakStart},
	KindBreakEnd:   {KindOut, KindBreakStart},
	KindBreakStart: {KindBreakEnd},
}

// ParseEventKind converts raw input into an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(strings.TrimSpace(s))
	switch k {
	case KindIn, KindOut, KindBreakStart, KindBreakEnd:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEventKind, s)
}

// CanTransitionTo reports whether a transition from the current state to next is valid.
func (k EventKind) CanTransitionTo(next EventKind) bool {
	for _, allowed := range validTransitions[k] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedNext returns the kinds that may follow k.
func (k EventKind) AllowedNext() []EventKind {
	out := make([]EventKind, len(validTransitions[k]))
	copy(out, validTransitions[k])
	return out
}

// ClockEvent is an immutable clock action recorded for a user.
type ClockEvent struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Type      EventKind `json:"type" bson:"type"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// CurrentState returns the kind of the latest event, or the initial state when nil.
func CurrentState(latest *ClockEvent) EventKind {
	if latest == nil {
		return kindNone
	}
	return latest.Type
}

// Status is the human-facing attendance status derived from the latest event.
type Status string

const (
	StatusClockedIn  Status = "Clocked In"
	StatusOnBreak    Status = "On Break"
	StatusClockedOut Status = "Clocked Out"
)

// StatusOf derives the display status. BREAK_END counts as clocked in.
func StatusOf(latest *ClockEvent) Status {
	switch CurrentState(latest) {
	case KindIn, KindBreakEnd:
		return StatusClockedIn
	case KindBreakStart:
		return StatusOnBreak
	default:
		return StatusClockedOut
	}
}

// StartOfDay returns local midnight of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
