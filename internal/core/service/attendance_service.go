package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

type attendanceService struct {
	users     ports.UserRepository
	events    ports.ClockEventRepository
	messages  ports.MessageRepository
	questions ports.QuestionRepository
	tx        ports.Transactor
	locks     ports.KeyedSerializer
	log       zerolog.Logger
	rt        runtime
}

// NewAttendanceService returns an AttendanceService implementation.
// Transitions of a single user are serialized through locks.
func NewAttendanceService(
	users ports.UserRepository,
	events ports.ClockEventRepository,
	messages ports.MessageRepository,
	questions ports.QuestionRepository,
	tx ports.Transactor,
	locks ports.KeyedSerializer,
	log zerolog.Logger,
	opts ...Option,
) ports.AttendanceService {
	return &attendanceService{
		users:     users,
		events:    events,
		messages:  messages,
		questions: questions,
		tx:        tx,
		locks:     locks,
		log:       log,
		rt:        newRuntime(opts),
	}
}

// RequestTransition validates requestedType against the user's latest event
// and appends a new event when the transition is legal.
func (s *attendanceService) RequestTransition(ctx context.Context, userID, requestedType string) (*domain.ClockEvent, error) {
	kind, err := domain.ParseEventKind(requestedType)
	if err != nil {
		return nil, fmt.Errorf("request transition: %w", err)
	}

	var created *domain.ClockEvent
	err = s.locks.Do(ctx, userID, func(ctx context.Context) error {
		ev, err := s.appendTransition(ctx, userID, kind)
		if err != nil {
			return err
		}
		created = ev
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("request transition: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("type", string(kind)).Msg("clock event recorded")
	return created, nil
}

// RecordClockOut appends an OUT event and, when a summary or questions are
// given, the message and questions owned by it.
func (s *attendanceService) RecordClockOut(ctx context.Context, in ports.ClockOutInput) (*ports.ClockOutResult, error) {
	var (
		result       ports.ClockOutResult
		eventWritten bool
	)

	err := s.locks.Do(ctx, in.UserID, func(ctx context.Context) error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			eventWritten = false
			result = ports.ClockOutResult{}

			ev, err := s.appendTransition(ctx, in.UserID, domain.KindOut)
			if err != nil {
				return err
			}
			eventWritten = true
			result.Event = *ev

			if in.Summary == "" && len(in.Questions) == 0 {
				return nil
			}

			msg, questions := s.buildAnnex(ev, in)
			if err := s.messages.Create(ctx, msg); err != nil {
				return fmt.Errorf("create message: %w", err)
			}
			if len(questions) > 0 {
				if err := s.questions.CreateMany(ctx, questions); err != nil {
					return fmt.Errorf("create questions: %w", err)
				}
			}
			result.Message = msg
			result.Questions = questions
			return nil
		})
	})
	if err != nil {
		if eventWritten && !s.tx.Atomic() {
			s.log.Warn().Err(err).
				Str("user_id", in.UserID).
				Str("event_id", result.Event.ID).
				Msg("clock-out kept without annex")
			partial := &ports.ClockOutResult{Event: result.Event}
			return partial, fmt.Errorf("record clock-out: %w: %v", domain.ErrPartialWrite, err)
		}
		return nil, fmt.Errorf("record clock-out: %w", err)
	}

	s.log.Info().
		Str("user_id", in.UserID).
		Bool("with_message", result.Message != nil).
		Int("questions", len(result.Questions)).
		Msg("clock-out recorded")

	return &result, nil
}

// CurrentStatus derives the display status from the latest event.
func (s *attendanceService) CurrentStatus(ctx context.Context, userID string) (*ports.StatusResult, error) {
	latest, err := s.events.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("current status: %w", err)
	}
	return &ports.StatusResult{
		Status:      domain.StatusOf(latest),
		LastEvent:   latest,
		AllowedNext: domain.CurrentState(latest).AllowedNext(),
	}, nil
}

// ListActivity returns the user's events in [from, to], newest first, with the
// content of the clock-out message where one exists.
func (s *attendanceService) ListActivity(ctx context.Context, userID string, from, to time.Time) ([]ports.ActivityItem, error) {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return nil, fmt.Errorf("list activity: %w: invalid date range", domain.ErrInvalidInput)
	}

	events, err := s.events.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	var outIDs []string
	for _, ev := range events {
		if ev.Type == domain.KindOut {
			outIDs = append(outIDs, ev.ID)
		}
	}

	contentByEvent := make(map[string]string, len(outIDs))
	if len(outIDs) > 0 {
		msgs, err := s.messages.ListByClockEventIDs(ctx, outIDs)
		if err != nil {
			return nil, fmt.Errorf("list activity: messages: %w", err)
		}
		for _, m := range msgs {
			contentByEvent[m.ClockEventID] = m.Content
		}
	}

	items := make([]ports.ActivityItem, len(events))
	for i, ev := range events {
		items[i] = ports.ActivityItem{Event: ev, Message: contentByEvent[ev.ID]}
	}
	return items, nil
}

// appendTransition must run under the user's lock. The owner is looked up
// there so a concurrent DeleteUser cannot leave an event behind.
func (s *attendanceService) appendTransition(ctx context.Context, userID string, kind domain.EventKind) (*domain.ClockEvent, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	latest, err := s.events.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest event: %w", err)
	}

	current := domain.CurrentState(latest)
	if !current.CanTransitionTo(kind) {
		from := string(current)
		if from == "" {
			from = "none"
		}
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrIllegalTransition, from, kind)
	}

	ev := &domain.ClockEvent{
		ID:        s.rt.newID(),
		UserID:    userID,
		Type:      kind,
		Timestamp: s.rt.now().UTC(),
	}
	if err := s.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}
	return ev, nil
}

func (s *attendanceService) buildAnnex(ev *domain.ClockEvent, in ports.ClockOutInput) (*domain.Message, []domain.Question) {
	content := in.Summary
	if content == "" {
		content = domain.PlaceholderSummary
	}

	msg := &domain.Message{
		ID:           s.rt.newID(),
		ClockEventID: ev.ID,
		UserID:       in.UserID,
		Content:      content,
		CreatedAt:    ev.Timestamp,
	}

	questions := make([]domain.Question, 0, len(in.Questions))
	for i, text := range in.Questions {
		questions = append(questions, domain.Question{
			ID:        s.rt.newID(),
			MessageID: msg.ID,
			Content:   text,
			CreatedAt: ev.Timestamp,
			Seq:       i,
		})
	}
	return msg, questions
}
