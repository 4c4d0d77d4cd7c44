package ports

import (
	"context"

	"github.com/marketbase/identity-service/internal/core/domain"
)

// RegisterInput carries the fields accepted at self-registration. Role is
// validated against the closed set upstream; an empty role defaults to
// customer.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// ProfileInput is a partial profile update; empty strings leave the stored
// value unchanged except Name, which is required by the schema.
type ProfileInput struct {
	Name         string
	Phone        string
	Address      string
	City         string
	Country      string
	ZipCode      string
	ProfileImage string
}

// AuthResult is the success shape of Register and Login: the sanitized user
// plus a fresh access/refresh pair.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// AuthService is the application-facing contract of the authentication core.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Deactivate(ctx context.Context, userID string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, userID string) (*domain.User, error)
}
