// Package token issues and verifies the signed credentials used by the API:
// short-lived access tokens carrying identity and role, and long-lived
// refresh tokens carrying identity only. Both are HS256 JWTs signed with a
// secret that is immutable after construction.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marketbase/identity-service/internal/core/domain"
)

// Kind discriminates access tokens from refresh tokens so one can never be
// replayed in place of the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrTokenInvalid is the umbrella error every verification failure wraps.
// Callers that do not care about the cause match on this one.
var ErrTokenInvalid = errors.New("invalid token")

var (
	ErrTokenMalformed   = fmt.Errorf("%w: malformed", ErrTokenInvalid)
	ErrSignatureInvalid = fmt.Errorf("%w: signature mismatch", ErrTokenInvalid)
	ErrTokenExpired     = fmt.Errorf("%w: expired", ErrTokenInvalid)
	ErrWrongKind        = fmt.Errorf("%w: wrong token kind", ErrTokenInvalid)
)

// Claims is the payload embedded in every issued token. Subject holds the
// user id. Role is present on access tokens only: refresh tokens never carry
// authorization-sufficient claims, the role is re-read from the store when a
// new access token is minted.
type Claims struct {
	Role domain.Role `json:"role,omitempty"`
	Kind Kind        `json:"kind"`
	jwt.RegisteredClaims
}

// UserID returns the identity the token was issued for.
func (c *Claims) UserID() string {
	return c.Subject
}

// Issuer mints signed access and refresh tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer builds an Issuer. Non-positive TTLs fall back to the defaults.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccess signs an access token for userID carrying its role.
func (i *Issuer) IssueAccess(userID string, role domain.Role) (string, error) {
	return i.sign(userID, role, KindAccess, i.accessTTL)
}

// IssueRefresh signs a refresh token for userID. The role claim is omitted.
func (i *Issuer) IssueRefresh(userID string) (string, error) {
	return i.sign(userID, "", KindRefresh, i.refreshTTL)
}

func (i *Issuer) sign(userID string, role domain.Role, kind Kind, ttl time.Duration) (string, error) {
	now := i.now().UTC()
	claims := &Claims{
		Role: role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verifier checks signature, expiry, and structure of presented tokens.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier builds a Verifier over the same secret the Issuer signs with.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// VerifyAccess validates tokenStr as an access token and returns its claims.
func (v *Verifier) VerifyAccess(tokenStr string) (*Claims, error) {
	return v.verify(tokenStr, KindAccess)
}

// VerifyRefresh validates tokenStr as a refresh token and returns its claims.
func (v *Verifier) VerifyRefresh(tokenStr string) (*Claims, error) {
	return v.verify(tokenStr, KindRefresh)
}

// verify checks the signature first, then expiry, then structure. The payload
// of a token with a bad signature is never inspected.
func (v *Verifier) verify(tokenStr string, kind Kind) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	if kind == KindAccess && !claims.Role.Valid() {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return v.secret, nil
}
