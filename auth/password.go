// Package auth hashes and verifies account passwords with bcrypt.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the cost used for signup since the first release
const DefaultCost = 12

// MaxPasswordLength is the longest input bcrypt accepts, in bytes
const MaxPasswordLength = 72

// Hasher produces and checks bcrypt digests at a fixed cost
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher; out-of-range costs fall back to DefaultCost
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// HashPassword returns a salted one-way digest of password
func (h *Hasher) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches digest.
// A wrong password or a malformed digest is simply false.
func (h *Hasher) VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
