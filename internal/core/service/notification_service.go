package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

type notificationService struct {
	users     ports.UserRepository
	events    ports.ClockEventRepository
	messages  ports.MessageRepository
	questions ports.QuestionRepository
	log       zerolog.Logger
	rt        runtime
}

// NewNotificationService returns a read-only NotificationService.
func NewNotificationService(
	users ports.UserRepository,
	events ports.ClockEventRepository,
	messages ports.MessageRepository,
	questions ports.QuestionRepository,
	log zerolog.Logger,
	opts ...Option,
) ports.NotificationService {
	return &notificationService{
		users:     users,
		events:    events,
		messages:  messages,
		questions: questions,
		log:       log,
		rt:        newRuntime(opts),
	}
}

// ListAdminNotifications merges every clock-out message with today's
// clock-ins, newest first.
func (s *notificationService) ListAdminNotifications(ctx context.Context) ([]domain.AdminNotification, error) {
	msgs, err := s.messages.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin feed: messages: %w", err)
	}

	clockIns, err := s.events.ListByKindSince(ctx, domain.KindIn, s.rt.today())
	if err != nil {
		return nil, fmt.Errorf("admin feed: clock-ins: %w", err)
	}

	byMessage := make(map[string][]domain.Question, len(msgs))
	if len(msgs) > 0 {
		qs, err := s.questions.ListByMessageIDs(ctx, messageIDs(msgs))
		if err != nil {
			return nil, fmt.Errorf("admin feed: questions: %w", err)
		}
		for _, q := range qs {
			byMessage[q.MessageID] = append(byMessage[q.MessageID], q)
		}
	}

	owners, err := s.ownerNames(ctx, msgs, clockIns)
	if err != nil {
		return nil, fmt.Errorf("admin feed: owners: %w", err)
	}

	feed := make([]domain.AdminNotification, 0, len(msgs)+len(clockIns))
	for _, m := range msgs {
		feed = append(feed, domain.NewMessageNotification(m, byMessage[m.ID], owners[m.UserID]))
	}
	for _, ev := range clockIns {
		feed = append(feed, domain.NewClockInNotification(ev, owners[ev.UserID]))
	}
	domain.SortNewestFirst(feed)

	s.log.Debug().Int("messages", len(msgs)).Int("clock_ins", len(clockIns)).Msg("admin feed built")
	return feed, nil
}

// ListEmployeeNotifications returns the answered questions of the user's
// messages, newest first.
func (s *notificationService) ListEmployeeNotifications(ctx context.Context, userID string) ([]domain.EmployeeNotification, error) {
	msgs, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("employee feed: messages: %w", err)
	}
	if len(msgs) == 0 {
		return []domain.EmployeeNotification{}, nil
	}

	answered, err := s.questions.ListAnsweredByMessageIDs(ctx, messageIDs(msgs))
	if err != nil {
		return nil, fmt.Errorf("employee feed: questions: %w", err)
	}

	feed := make([]domain.EmployeeNotification, 0, len(answered))
	for _, q := range answered {
		if !q.Answered() {
			continue
		}
		feed = append(feed, domain.NewEmployeeNotification(q))
	}
	domain.SortAnswersNewestFirst(feed)
	return feed, nil
}

func (s *notificationService) ownerNames(ctx context.Context, msgs []domain.Message, events []domain.ClockEvent) (map[string]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, m := range msgs {
		add(m.UserID)
	}
	for _, ev := range events {
		add(ev.UserID)
	}

	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
