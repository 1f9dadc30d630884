package ports

import (
	"context"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
	ChangePassword(ctx context.Context, userID, password string) error
}
