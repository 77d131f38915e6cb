package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deliverly/marketplace-api/internal/core/domain"
	"github.com/deliverly/marketplace-api/internal/core/ports"
)

// minSecretLen is the minimum signing secret length for HS256: 32 bytes,
// i.e. 256 bits of key material.
const minSecretLen = 32

const defaultTokenTTL = 15 * time.Minute

// TokenCodec issues and verifies HMAC-SHA256 signed JWTs. It implements
// ports.TokenCodec and is the only component holding the signing secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec builds a codec for the given secret and token lifetime.
// A secret shorter than 32 bytes is a configuration error: the caller is
// expected to treat it as fatal at startup.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes for HS256", minSecretLen)
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}, nil
}

// Issue mints a signed token for the user with the configured lifetime.
func (c *TokenCodec) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.Email,
		"userId": user.ID,
		"name":   user.Name,
		"roles":  user.RoleNames(),
		"iat":    now.Unix(),
		"exp":    now.Add(c.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// ParseClaims decodes and verifies a token. Outcomes:
//   - (claims, nil) for a valid, unexpired token;
//   - (claims, ports.ErrTokenExpired) for a well-signed token past its expiry;
//   - (nil, ports.ErrTokenInvalid) for anything malformed or tampered with.
func (c *TokenCodec) ParseClaims(token string) (*ports.TokenClaims, error) {
	raw := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())

	switch {
	case err == nil && tkn.Valid:
		return decodeClaims(raw), nil
	case errors.Is(err, jwt.ErrTokenExpired):
		// Signature verified, only the lifetime check failed. The claims
		// remain usable for reporting expiry distinctly from corruption.
		return decodeClaims(raw), ports.ErrTokenExpired
	default:
		return nil, ports.ErrTokenInvalid
	}
}

// ExtractSubject returns the subject claim. Expired tokens still yield
// their subject; unverifiable tokens yield "".
func (c *TokenCodec) ExtractSubject(token string) string {
	claims, err := c.ParseClaims(token)
	if claims == nil || errors.Is(err, ports.ErrTokenInvalid) {
		return ""
	}
	return claims.Subject
}

// ExtractRoles returns the roles claim as a set. Missing or wrongly-shaped
// roles yield an empty set, never an error.
func (c *TokenCodec) ExtractRoles(token string) map[string]struct{} {
	roles := make(map[string]struct{})
	claims, err := c.ParseClaims(token)
	if claims == nil || errors.Is(err, ports.ErrTokenInvalid) {
		return roles
	}
	for _, r := range claims.Roles {
		roles[r] = struct{}{}
	}
	return roles
}

// IsExpired reports whether the token's lifetime has passed. Any parse
// failure counts as expired.
func (c *TokenCodec) IsExpired(token string) bool {
	claims, err := c.ParseClaims(token)
	if err != nil || claims == nil {
		return true
	}
	return !claims.ExpiresAt.After(time.Now())
}

// ValidateFor reports whether the token is intact, unexpired, and bound to
// the given user. The subject comparison is case-insensitive, matching the
// repository's email semantics.
func (c *TokenCodec) ValidateFor(token string, user *domain.User) bool {
	if token == "" || user == nil {
		return false
	}
	claims, err := c.ParseClaims(token)
	if err != nil || claims == nil {
		return false
	}
	return claims.Subject != "" && strings.EqualFold(claims.Subject, user.Email)
}

// decodeClaims converts raw JWT claims into the transport-agnostic form.
// Individual claims of the wrong shape are dropped rather than rejected.
func decodeClaims(raw jwt.MapClaims) *ports.TokenClaims {
	out := &ports.TokenClaims{}

	if sub, ok := raw["sub"].(string); ok {
		out.Subject = sub
	}
	if name, ok := raw["name"].(string); ok {
		out.Name = name
	}
	// JSON numbers arrive as float64.
	switch id := raw["userId"].(type) {
	case float64:
		out.UserID = int64(id)
	case int64:
		out.UserID = id
	}
	if list, ok := raw["roles"].([]interface{}); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	}
	if iat, err := raw.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out
}
