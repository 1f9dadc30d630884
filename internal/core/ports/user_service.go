package ports

import (
	"context"
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// CreateEmployeeInput carries the data an administrator enters for a new employee.
type CreateEmployeeInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// EmployeeSummary is a user together with the latest clock event.
type EmployeeSummary struct {
	User      domain.User
	LastEvent *domain.ClockEvent
	Status    domain.Status
}

// UserService covers administrator user management.
type UserService interface {
	ListEmployees(ctx context.Context) ([]EmployeeSummary, error)
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*domain.User, error)
	// DeleteUser removes the user with all owned events, messages and questions.
	DeleteUser(ctx context.Context, id string) error
}

// QuoteService manages the quote of the day.
type QuoteService interface {
	Get(ctx context.Context, date time.Time) (*domain.QuoteOfTheDay, error)
	Set(ctx context.Context, date time.Time, quote, author string) (*domain.QuoteOfTheDay, error)
}
