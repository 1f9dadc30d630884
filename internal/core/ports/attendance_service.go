package ports

import (
	"context"
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// ClockOutInput carries the optional annex of a clock-out.
// Questions are expected to be non-blank; the transport layer filters them.
type ClockOutInput struct {
	UserID    string
	Summary   string
	Questions []string
}

// ClockOutResult is returned by RecordClockOut. Message and Questions are
// empty when no annex was requested.
type ClockOutResult struct {
	Event     domain.ClockEvent
	Message   *domain.Message
	Questions []domain.Question
}

// StatusResult describes a user's current attendance state.
type StatusResult struct {
	Status      domain.Status
	LastEvent   *domain.ClockEvent
	AllowedNext []domain.EventKind
}

// ActivityItem is one entry of a user's activity history.
type ActivityItem struct {
	Event   domain.ClockEvent
	Message string // content of the clock-out message, if any
}

// AttendanceService validates and records clock transitions.
type AttendanceService interface {
	RequestTransition(ctx context.Context, userID, requestedType string) (*domain.ClockEvent, error)
	RecordClockOut(ctx context.Context, in ClockOutInput) (*ClockOutResult, error)
	CurrentStatus(ctx context.Context, userID string) (*StatusResult, error)
	ListActivity(ctx context.Context, userID string, from, to time.Time) ([]ActivityItem, error)
}
