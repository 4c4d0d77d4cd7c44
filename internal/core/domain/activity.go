package domain

import (
	"context"
	"time"
)

// ActivityAction enumerates the auth events recorded to the audit trail.
type ActivityAction string

const (
	ActivityRegister       ActivityAction = "register"
	ActivityLogin          ActivityAction = "login"
	ActivityRefresh        ActivityAction = "refresh"
	ActivityPasswordChange ActivityAction = "password_change"
	ActivityProfileUpdate  ActivityAction = "profile_update"
	ActivityDeactivate     ActivityAction = "deactivate"
)

// ActivityEvent is an append-only record of a completed auth operation.
// Recording is best-effort and asynchronous; no auth decision depends on it.
type ActivityEvent struct {
	UserID    string         `json:"user_id"`
	Action    ActivityAction `json:"action"`
	IP        string         `json:"ip,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type clientIPKey struct{}

// WithClientIP stashes the caller's network address on the context so the
// audit trail can attribute events without widening service signatures.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address stored by WithClientIP, or "" when the call
// did not originate from an HTTP request.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
