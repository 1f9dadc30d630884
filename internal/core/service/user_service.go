package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

type userService struct {
	users     ports.UserRepository
	events    ports.ClockEventRepository
	messages  ports.MessageRepository
	questions ports.QuestionRepository
	tx        ports.Transactor
	locks     ports.KeyedSerializer
	log       zerolog.Logger
	rt        runtime
}

// NewUserService returns a UserService implementation.
func NewUserService(
	users ports.UserRepository,
	events ports.ClockEventRepository,
	messages ports.MessageRepository,
	questions ports.QuestionRepository,
	tx ports.Transactor,
	locks ports.KeyedSerializer,
	log zerolog.Logger,
	opts ...Option,
) ports.UserService {
	return &userService{
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

// ListEmployees returns every employee, newest first, with the latest clock event.
func (s *userService) ListEmployees(ctx context.Context) ([]ports.EmployeeSummary, error) {
	employees, err := s.users.ListByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if len(employees) == 0 {
		return []ports.EmployeeSummary{}, nil
	}

	ids := make([]string, len(employees))
	for i, u := range employees {
		ids[i] = u.ID
	}
	latest, err := s.events.LatestPerUser(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list employees: latest events: %w", err)
	}

	out := make([]ports.EmployeeSummary, len(employees))
	for i, u := range employees {
		summary := ports.EmployeeSummary{User: u}
		if ev, ok := latest[u.ID]; ok {
			summary.LastEvent = &ev
		}
		summary.Status = domain.StatusOf(summary.LastEvent)
		out[i] = summary
	}
	return out, nil
}

// CreateEmployee registers an EMPLOYEE account on behalf of an administrator.
func (s *userService) CreateEmployee(ctx context.Context, in ports.CreateEmployeeInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("create employee: %w: username and email are required", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPINLen {
		return nil, fmt.Errorf("create employee: %w: PIN must be at least %d characters long", domain.ErrInvalidInput, minPINLen)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.rt.now().UTC()
	user := &domain.User{
		ID:           s.rt.newID(),
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("employee created")
	return user, nil
}

// DeleteUser removes children before parents: questions, messages, events, user.
// It holds the user's clock lock so no clock action interleaves with the cascade.
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	err := s.locks.Do(ctx, id, func(ctx context.Context) error {
		return s.tx.WithinTransaction(ctx, s.cascade(id))
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *userService) cascade(id string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		msgs, err := s.messages.ListByUser(ctx, id)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		if len(msgs) > 0 {
			if err := s.questions.DeleteByMessageIDs(ctx, messageIDs(msgs)); err != nil {
				return fmt.Errorf("delete questions: %w", err)
			}
		}
		if err := s.messages.DeleteByUser(ctx, id); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := s.events.DeleteByUser(ctx, id); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		if err := s.users.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	}
}
