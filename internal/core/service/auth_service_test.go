package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/marketbase/identity-service/internal/core/domain"
	"github.com/marketbase/identity-service/internal/core/password"
	"github.com/marketbase/identity-service/internal/core/ports"
	"github.com/marketbase/identity-service/internal/core/token"
)

type stubUserRepo struct {
	byID   map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.nextID)
	r.byID[created.ID] = cloneUser(created)
	return cloneUser(created), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, fields ports.UserUpdate) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if fields.Name != nil {
		u.Name = *fields.Name
	}
	if fields.Profile != nil {
		u.Profile = *fields.Profile
	}
	if fields.PasswordHash != nil {
		u.PasswordHash = *fields.PasswordHash
	}
	if fields.LastLogin != nil {
		u.LastLogin = *fields.LastLogin
	}
	if fields.Active != nil {
		u.Active = *fields.Active
	}
	if fields.EmailVerified != nil {
		u.EmailVerified = *fields.EmailVerified
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

type stubRecorder struct {
	events []domain.ActivityEvent
}

func (r *stubRecorder) Record(event domain.ActivityEvent) {
	r.events = append(r.events, event)
}

const testSecret = "test-secret"

func newTestService(repo *stubUserRepo, recorder *stubRecorder) *AuthService {
	hasher := password.NewHasher(bcrypt.MinCost)
	issuer := token.NewIssuer(testSecret, 15*time.Minute, 7*24*time.Hour)
	verifier := token.NewVerifier(testSecret)
	return NewAuthService(repo, hasher, issuer, verifier, recorder, zerolog.Nop())
}

func register(t *testing.T, svc *AuthService, email string, role domain.Role) *ports.AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Ann Lee",
		Email:    email,
		Password: "secret1",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return result
}

func TestAuthService_Register_DefaultsToCustomer(t *testing.T) {
	repo := newStubUserRepo()
	recorder := &stubRecorder{}
	svc := newTestService(repo, recorder)

	result := register(t, svc, "ann@x.com", "")

	if result.User.Role != domain.RoleCustomer {
		t.Fatalf("expected customer role, got %s", result.User.Role)
	}
	if result.User.PasswordHash == "secret1" {
		t.Fatalf("password stored in plaintext")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected token pair, got access=%q refresh=%q", result.AccessToken, result.RefreshToken)
	}

	verifier := token.NewVerifier(testSecret)
	claims, err := verifier.VerifyAccess(result.AccessToken)
	if err != nil {
		t.Fatalf("issued access token does not verify: %v", err)
	}
	if claims.UserID() != result.User.ID || claims.Role != domain.RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if len(recorder.events) != 1 || recorder.events[0].Action != domain.ActivityRegister {
		t.Fatalf("expected one register activity event, got %+v", recorder.events)
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	result := register(t, svc, "  Ann@X.Com ", domain.RoleBusiness)
	if result.User.Email != "ann@x.com" {
		t.Fatalf("email not normalized: %q", result.User.Email)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	register(t, svc, "ann@x.com", "")
	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Ann Again",
		Email:    "ann@x.com",
		Password: "other",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Register_AdminRejected(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Eve",
		Email:    "eve@x.com",
		Password: "secret1",
		Role:     domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin self-registration, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	created := register(t, svc, "ann@x.com", "")

	result, err := svc.Login(context.Background(), "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.User.ID != created.User.ID {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if result.User.LastLogin.IsZero() {
		t.Fatalf("last login not updated")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}
}

func TestAuthService_ActivityCarriesClientIP(t *testing.T) {
	repo := newStubUserRepo()
	recorder := &stubRecorder{}
	svc := newTestService(repo, recorder)

	register(t, svc, "ann@x.com", "")

	ctx := domain.WithClientIP(context.Background(), "203.0.113.7")
	if _, err := svc.Login(ctx, "ann@x.com", "secret1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	last := recorder.events[len(recorder.events)-1]
	if last.Action != domain.ActivityLogin || last.IP != "203.0.113.7" {
		t.Fatalf("expected login event from 203.0.113.7, got %+v", last)
	}
	// The register call ran without a request context; its event has no IP.
	if recorder.events[0].IP != "" {
		t.Fatalf("expected empty IP outside a request, got %q", recorder.events[0].IP)
	}
}

func TestAuthService_Login_EnumerationResistance(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	register(t, svc, "ann@x.com", "")

	_, wrongPassErr := svc.Login(context.Background(), "ann@x.com", "wrong")
	_, unknownErr := svc.Login(context.Background(), "ghost@x.com", "whatever")

	if !errors.Is(wrongPassErr, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassErr)
	}
	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if wrongPassErr.Error() != unknownErr.Error() {
		t.Fatalf("errors differ: %q vs %q", wrongPassErr, unknownErr)
	}
}

func TestAuthService_Login_Deactivated(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	created := register(t, svc, "ann@x.com", "")
	if _, err := svc.Deactivate(context.Background(), created.User.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	_, err := svc.Login(context.Background(), "ann@x.com", "secret1")
	if !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestAuthService_Refresh_UsesCurrentRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	created := register(t, svc, "ann@x.com", "")

	// Promote server-side after the refresh token was issued.
	repo.byID[created.User.ID].Role = domain.RoleAdmin

	access, err := svc.Refresh(context.Background(), created.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	claims, err := token.NewVerifier(testSecret).VerifyAccess(access)
	if err != nil {
		t.Fatalf("refreshed token does not verify: %v", err)
	}
	if claims.Role != domain.RoleAdmin {
		t.Fatalf("expected current role admin, got %s", claims.Role)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	created := register(t, svc, "ann@x.com", "")

	if _, err := svc.Refresh(context.Background(), created.AccessToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for garbage, got %v", err)
	}
}

func TestAuthService_Refresh_DeactivatedUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	created := register(t, svc, "ann@x.com", "")
	if _, err := svc.Deactivate(context.Background(), created.User.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), created.RefreshToken); !errors.Is(err, domain.ErrUserUnavailable) {
		t.Fatalf("expected ErrUserUnavailable, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	created := register(t, svc, "ann@x.com", "")

	if err := svc.ChangePassword(context.Background(), created.User.ID, "wrong", "newpass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong current password, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), created.User.ID, "secret1", "newpass1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), "ann@x.com", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted")
	}
	if _, err := svc.Login(context.Background(), "ann@x.com", "newpass1"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	created := register(t, svc, "ann@x.com", "")

	updated, err := svc.UpdateProfile(context.Background(), created.User.ID, ports.ProfileInput{
		Name:  "Ann B. Lee",
		Phone: "+1 555 0100",
		City:  "Austin",
	})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Name != "Ann B. Lee" || updated.Profile.Phone != "+1 555 0100" || updated.Profile.City != "Austin" {
		t.Fatalf("unexpected profile: %+v", updated)
	}
}

func TestAuthService_MarkEmailVerified(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, &stubRecorder{})

	created := register(t, svc, "ann@x.com", "")
	if created.User.EmailVerified {
		t.Fatalf("new account should not be verified")
	}

	updated, err := svc.MarkEmailVerified(context.Background(), created.User.ID)
	if err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}
	if !updated.EmailVerified {
		t.Fatalf("verified flag not set")
	}
}
