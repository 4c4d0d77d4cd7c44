package ports

import (
	"context"
	"time"

	"github.com/marketbase/identity-service/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
// Implementations must enforce email uniqueness atomically: Insert fails
// with domain.ErrEmailTaken when a concurrent insert already claimed the
// email. Lookups return domain.ErrUserNotFound when no document matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, fields UserUpdate) (*domain.User, error)
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name          *string
	Profile       *domain.Profile
	PasswordHash  *string
	LastLogin     *time.Time
	Active        *bool
	EmailVerified *bool
}
