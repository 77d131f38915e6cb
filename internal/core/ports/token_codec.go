package ports

import (
	"errors"
	"time"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// ErrTokenExpired marks a token whose signature verified but whose expiry
// has passed. ParseClaims still returns the claims alongside it so expiry
// can be reported distinctly from corruption.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid marks a token that is malformed or fails signature
// verification. No claims are recoverable from such a token.
var ErrTokenInvalid = errors.New("token invalid")

// TokenClaims is the decoded payload of a signed credential.
type TokenClaims struct {
	Subject   string
	UserID    int64
	Name      string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and verifies signed credentials. It is the only place
// the signing secret is used.
type TokenCodec interface {
	// Issue mints a signed token carrying the user's identity claims.
	Issue(user *domain.User) (string, error)

	// ParseClaims decodes a token with a three-way outcome: (claims, nil)
	// for a valid token, (claims, ErrTokenExpired) for a well-signed but
	// expired token, and (nil, ErrTokenInvalid) otherwise.
	ParseClaims(token string) (*TokenClaims, error)

	// ExtractSubject returns the subject claim, or "" when no claims are
	// recoverable.
	ExtractSubject(token string) string

	// ExtractRoles returns the roles claim as a set. A missing or
	// wrongly-shaped claim yields an empty set, never an error.
	ExtractRoles(token string) map[string]struct{}

	// IsExpired reports whether the token has expired. Any parse failure
	// counts as expired (fail-closed).
	IsExpired(token string) bool

	// ValidateFor reports whether the token is intact, unexpired, and its
	// subject case-insensitively matches the user's email.
	ValidateFor(token string, user *domain.User) bool
}
