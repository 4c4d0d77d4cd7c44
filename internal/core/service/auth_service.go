package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketbase/identity-service/internal/core/domain"
	"github.com/marketbase/identity-service/internal/core/password"
	"github.com/marketbase/identity-service/internal/core/ports"
	"github.com/marketbase/identity-service/internal/core/token"
)

// AuthService implements registration, login, token refresh, and the
// account operations behind the protected routes. It is stateless across
// calls; every decision is derived from the request, the store, and the
// immutable signing secret held by the issuer/verifier.
type AuthService struct {
	repo     ports.UserRepository
	hasher   *password.Hasher
	issuer   *token.Issuer
	verifier *token.Verifier
	activity ports.ActivityRecorder
	logger   zerolog.Logger

	// dummyHash absorbs a bcrypt comparison on the unknown-email login path
	// so response timing does not reveal whether the email exists.
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher *password.Hasher,
	issuer *token.Issuer,
	verifier *token.Verifier,
	activity ports.ActivityRecorder,
	logger zerolog.Logger,
) *AuthService {
	dummy, err := hasher.Hash("decoy-credential")
	if err != nil {
		// bcrypt only fails on an impossible cost, which NewHasher clamps.
		logger.Error().Err(err).Msg("failed to precompute decoy hash")
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		issuer:    issuer,
		verifier:  verifier,
		activity:  activity,
		logger:    logger,
		dummyHash: dummy,
	}
}

// Register creates a new account. Role defaults to customer; admin
// self-registration is rejected outright, elevation requires an existing
// admin. The returned user never includes the password hash in JSON.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrForbidden, input.Role)
	}
	if role == domain.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot self-register", domain.ErrForbidden)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:          input.Name,
		Email:         domain.NormalizeEmail(input.Email),
		PasswordHash:  hash,
		Role:          role,
		Active:        true,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(created)
	if err != nil {
		return nil, err
	}

	s.record(ctx, created.ID, domain.ActivityRegister)
	s.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")

	return &ports.AuthResult{User: created, AccessToken: pair.access, RefreshToken: pair.refresh}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password both return ErrInvalidCredentials; a deactivated account returns
// the distinct ErrAccountDeactivated. On success the last-login timestamp is
// updated and a fresh token pair issued.
func (s *AuthService) Login(ctx context.Context, email, pass string) (*ports.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a comparison so the miss costs the same as a mismatch.
			s.hasher.Verify(pass, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		return nil, domain.ErrAccountDeactivated
	}

	if !s.hasher.Verify(pass, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	updated, err := s.repo.Update(ctx, user.ID, ports.UserUpdate{LastLogin: &now})
	if err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	pair, err := s.issuePair(updated)
	if err != nil {
		return nil, err
	}

	s.record(ctx, updated.ID, domain.ActivityLogin)
	s.logger.Info().Str("user_id", updated.ID).Msg("user logged in")

	return &ports.AuthResult{User: updated, AccessToken: pair.access, RefreshToken: pair.refresh}, nil
}

// Refresh mints a new access token from a refresh token. The user is
// re-loaded from the store and the new token carries its current role, never
// the role at refresh-token issuance time.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.verifier.VerifyRefresh(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserUnavailable
		}
		return "", err
	}
	if !user.Active {
		return "", domain.ErrUserUnavailable
	}

	access, err := s.issuer.IssueAccess(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	s.record(ctx, user.ID, domain.ActivityRefresh)
	return access, nil
}

// CurrentUser returns the stored account for an already-authenticated id.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile replaces the user's name and profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ports.ProfileInput) (*domain.User, error) {
	profile := domain.Profile{
		Phone:        input.Phone,
		Address:      input.Address,
		City:         input.City,
		Country:      input.Country,
		ZipCode:      input.ZipCode,
		ProfileImage: input.ProfileImage,
	}

	updated, err := s.repo.Update(ctx, userID, ports.UserUpdate{Name: &input.Name, Profile: &profile})
	if err != nil {
		return nil, err
	}

	s.record(ctx, userID, domain.ActivityProfileUpdate)
	return updated, nil
}

// ChangePassword re-verifies the current password before persisting the new
// hash. Outstanding tokens remain valid until they expire; tokens are
// stateless and cannot be revoked.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.repo.Update(ctx, userID, ports.UserUpdate{PasswordHash: &hash}); err != nil {
		return err
	}

	s.record(ctx, userID, domain.ActivityPasswordChange)
	s.logger.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

// Deactivate flips the active flag off. Accounts are never hard-deleted.
func (s *AuthService) Deactivate(ctx context.Context, userID string) (*domain.User, error) {
	inactive := false
	updated, err := s.repo.Update(ctx, userID, ports.UserUpdate{Active: &inactive})
	if err != nil {
		return nil, err
	}

	s.record(ctx, userID, domain.ActivityDeactivate)
	s.logger.Info().Str("user_id", userID).Msg("account deactivated")
	return updated, nil
}

// MarkEmailVerified sets the email-verified flag.
func (s *AuthService) MarkEmailVerified(ctx context.Context, userID string) (*domain.User, error) {
	verified := true
	return s.repo.Update(ctx, userID, ports.UserUpdate{EmailVerified: &verified})
}

type tokenPair struct {
	access  string
	refresh string
}

func (s *AuthService) issuePair(user *domain.User) (tokenPair, error) {
	access, err := s.issuer.IssueAccess(user.ID, user.Role)
	if err != nil {
		return tokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return tokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return tokenPair{access: access, refresh: refresh}, nil
}

func (s *AuthService) record(ctx context.Context, userID string, action domain.ActivityAction) {
	if s.activity == nil {
		return
	}
	s.activity.Record(domain.ActivityEvent{
		UserID:    userID,
		Action:    action,
		IP:        domain.ClientIP(ctx),
		Timestamp: time.Now().UTC(),
	})
}
