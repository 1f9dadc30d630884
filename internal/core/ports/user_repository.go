package ports

import (
	"context"
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create returns domain.ErrUserExists when the email or username is taken.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByLogin matches either the email or the username.
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	// ListByRole returns users of the given role, newest first.
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
