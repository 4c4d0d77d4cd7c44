package domain

import "errors"

var (
	// ErrEmailTaken signals a registration attempt with an already-registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password so the
	// two cases are indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDeactivated is returned when credentials are valid but the
	// account has been deactivated. The distinct message is deliberate.
	ErrAccountDeactivated = errors.New("account has been deactivated")

	// ErrInvalidRefreshToken covers every refresh-token verification failure.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	// ErrUserUnavailable is returned on refresh when the user behind a valid
	// refresh token no longer exists or has been deactivated.
	ErrUserUnavailable = errors.New("user not found or account inactive")

	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden signals a valid identity with insufficient role or
	// verification state.
	ErrForbidden = errors.New("access forbidden")
)
