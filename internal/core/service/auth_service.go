package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/deliverly/marketplace-api/internal/core/domain"
	"github.com/deliverly/marketplace-api/internal/core/ports"
)

// AuthService implements registration and the token lifecycle: short-lived
// signed access tokens plus opaque, server-side refresh tokens.
type AuthService struct {
	users   ports.UserRepository
	codec   ports.TokenCodec
	refresh ports.RefreshTokenStore
	audit   ports.AuditSink
	logger  zerolog.Logger
}

func NewAuthService(users ports.UserRepository, codec ports.TokenCodec, refresh ports.RefreshTokenStore, audit ports.AuditSink, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, codec: codec, refresh: refresh, audit: audit, logger: logger}
}

// Register creates a new account and logs it in. ADMIN cannot be
// self-assigned; an empty role list defaults to USER.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, domain.ErrInvalidCredentials
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}
	for _, r := range roles {
		if _, ok := domain.ParseRole(string(r)); !ok || r == domain.RoleAdmin {
			return nil, domain.ErrInvalidCredentials
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hash),
		Phone:        input.Phone,
		Active:       true,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record("register", created.Email, "success")
	return s.issueTokens(ctx, created)
}

// Login authenticates by email and password. Lookup and password failures
// collapse into ErrInvalidCredentials so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.record("login", email, "denied")
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to record last login")
	}

	s.record("login", user.Email, "success")
	return s.issueTokens(ctx, user)
}

// DriverLogin is Login restricted to accounts holding the DRIVER role.
func (s *AuthService) DriverLogin(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.record("driver_login", email, "denied")
		return nil, err
	}
	if !user.HasRole(domain.RoleDriver) {
		s.record("driver_login", user.Email, "denied")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to record last login")
	}

	s.record("driver_login", user.Email, "success")
	return s.issueTokens(ctx, user)
}

// Refresh exchanges a stored refresh token for a fresh access token. The
// refresh token is kept until logout or its TTL lapses.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}

	userID, err := s.refresh.UserID(ctx, refreshToken)
	if err != nil {
		s.record("refresh", "", "denied")
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.record("refresh", "", "denied")
		return nil, domain.ErrInvalidToken
	}
	if !user.Active {
		s.record("refresh", user.Email, "denied")
		return nil, domain.ErrInactiveUser
	}

	access, err := s.codec.Issue(user)
	if err != nil {
		return nil, err
	}

	s.record("refresh", user.Email, "success")
	return &ports.AuthResult{AccessToken: access, RefreshToken: refreshToken, User: user}, nil
}

// Logout revokes the user's stored refresh token. Outstanding access
// tokens remain valid until they expire; there is no revocation list.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.refresh.Revoke(ctx, userID)
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	access, err := s.codec.Issue(user)
	if err != nil {
		return nil, err
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Save(ctx, refresh, user.ID); err != nil {
		return nil, err
	}

	return &ports.AuthResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *AuthService) record(action, subject, outcome string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.SecurityEvent{
		Subject:    strings.ToLower(subject),
		Action:     action,
		Outcome:    outcome,
		OccurredAt: time.Now().UTC(),
	})
}

// newRefreshToken returns 32 bytes of hex-encoded randomness. Refresh
// tokens are opaque handles, not JWTs: they prove nothing on their own and
// are only meaningful against the server-side store.
func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
