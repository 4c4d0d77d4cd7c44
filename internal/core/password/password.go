// Package password wraps bcrypt behind a small hasher type so the work
// factor is fixed in one place and verification never leaks through panics.
package password

import "golang.org/x/crypto/bcrypt"

// DefaultCost matches a bcrypt work factor of 10.
const DefaultCost = 10

// Hasher performs one-way salted hashing of plaintext credentials.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Two calls on the same
// input produce different hashes. Errors only on catastrophic failure
// (entropy exhaustion, impossible cost).
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. Comparison is
// constant-time within bcrypt; malformed stored hashes return false
// rather than an error so a corrupt record cannot crash a login path.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
