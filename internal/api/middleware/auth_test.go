package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deliverly/marketplace-api/internal/core/domain"
	"github.com/deliverly/marketplace-api/internal/core/ports"
	"github.com/deliverly/marketplace-api/internal/core/service"
)

const testSecret = "fedcba9876543210fedcba9876543210"

// stubUsers satisfies ports.UserRepository with a fixed user set keyed by
// lowercase email. Only the read methods matter to the middleware.
type stubUsers struct {
	byEmail map[string]*domain.User
}

func (s *stubUsers) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, domain.ErrUserExists
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := s.byEmail[strings.ToLower(email)]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) List(context.Context) ([]*domain.User, error)                  { return nil, nil }
func (s *stubUsers) Update(context.Context, *domain.User) (*domain.User, error)    { return nil, domain.ErrUserNotFound }
func (s *stubUsers) Delete(context.Context, int64) error                           { return domain.ErrUserNotFound }
func (s *stubUsers) UpdateLastLogin(context.Context, int64) error                  { return nil }

func testCodec(t *testing.T) ports.TokenCodec {
	t.Helper()
	codec, err := service.NewTokenCodec(testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func activeUser() *domain.User {
	return &domain.User{
		ID:     7,
		Name:   "Seven",
		Email:  "seven@x.com",
		Active: true,
		Roles:  []domain.Role{domain.RoleUser},
	}
}

// signToken builds a raw HS256 token so tests can shape claims the codec
// itself would never issue.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// runAuth sends one request through the Authenticate middleware and
// returns the principal the downstream handler observed.
func runAuth(t *testing.T, cfg AuthConfig, path, header string) (*domain.Principal, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.Principal
	called := false
	handler := Authenticate(cfg)(func(c echo.Context) error {
		called = true
		seen = PrincipalFrom(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return seen, called
}

func TestAuthenticate_ValidToken(t *testing.T) {
	user := activeUser()
	codec := testCodec(t)
	cfg := AuthConfig{
		Codec:  codec,
		Users:  &stubUsers{byEmail: map[string]*domain.User{user.Email: user}},
		Logger: zerolog.Nop(),
	}

	token, err := codec.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p, called := runAuth(t, cfg, "/api/orders", "Bearer "+token)
	if !called {
		t.Fatalf("next handler not called")
	}
	if p == nil {
		t.Fatalf("expected a principal")
	}
	if p.UserID != user.ID || p.Email != user.Email {
		t.Fatalf("principal = %+v, want user %d", p, user.ID)
	}
	if !p.HasRole(domain.RoleUser) {
		t.Fatalf("principal roles = %v, want USER", p.Roles)
	}
}

func TestAuthenticate_AnonymousPassThrough(t *testing.T) {
	user := activeUser()
	cfg := AuthConfig{
		Codec:  testCodec(t),
		Users:  &stubUsers{byEmail: map[string]*domain.User{user.Email: user}},
		Logger: zerolog.Nop(),
	}

	for name, header := range map[string]string{
		"no header":       "",
		"basic scheme":    "Basic dXNlcjpwYXNz",
		"bare token":      "some-token",
		"garbage bearer":  "Bearer not-a-jwt",
		"tampered bearer": "Bearer aaaa.bbbb.cccc",
	} {
		p, called := runAuth(t, cfg, "/api/orders", header)
		if !called {
			t.Fatalf("%s: next handler not called", name)
		}
		if p != nil {
			t.Fatalf("%s: expected anonymous request, got principal %+v", name, p)
		}
	}
}

func TestAuthenticate_RejectedCredentials(t *testing.T) {
	user := activeUser()
	inactive := activeUser()
	inactive.ID = 8
	inactive.Email = "eight@x.com"
	inactive.Active = false

	codec := testCodec(t)
	cfg := AuthConfig{
		Codec: codec,
		Users: &stubUsers{byEmail: map[string]*domain.User{
			user.Email:     user,
			inactive.Email: inactive,
		}},
		Logger: zerolog.Nop(),
	}

	now := time.Now()
	expired := signToken(t, jwt.MapClaims{
		"sub":    user.Email,
		"userId": user.ID,
		"roles":  user.RoleNames(),
		"iat":    now.Add(-2 * time.Hour).Unix(),
		"exp":    now.Add(-time.Hour).Unix(),
	})
	unknown := signToken(t, jwt.MapClaims{
		"sub": "ghost@x.com",
		"iat": now.Unix(),
		"exp": now.Add(time.Minute).Unix(),
	})
	inactiveToken, err := codec.Issue(inactive)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for name, token := range map[string]string{
		"expired token":   expired,
		"unknown subject": unknown,
		"inactive user":   inactiveToken,
	} {
		p, called := runAuth(t, cfg, "/api/orders", "Bearer "+token)
		if !called {
			t.Fatalf("%s: next handler not called", name)
		}
		if p != nil {
			t.Fatalf("%s: expected no principal, got %+v", name, p)
		}
	}
}

// A token carrying no roles claim falls back to the stored record.
func TestAuthenticate_RoleFallback(t *testing.T) {
	user := activeUser()
	user.Roles = []domain.Role{domain.RoleMerchantAdmin}

	codec := testCodec(t)
	cfg := AuthConfig{
		Codec:  codec,
		Users:  &stubUsers{byEmail: map[string]*domain.User{user.Email: user}},
		Logger: zerolog.Nop(),
	}

	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"sub":    user.Email,
		"userId": user.ID,
		"iat":    now.Unix(),
		"exp":    now.Add(time.Minute).Unix(),
	})

	p, _ := runAuth(t, cfg, "/api/orders", "Bearer "+token)
	if p == nil {
		t.Fatalf("expected a principal")
	}
	if !p.HasRole(domain.RoleMerchantAdmin) {
		t.Fatalf("roles = %v, want fallback to stored MERCHANT_ADMIN", p.Roles)
	}
}

// Roles present in the token win over the stored record.
func TestAuthenticate_TokenRolesWin(t *testing.T) {
	user := activeUser()
	codec := testCodec(t)
	cfg := AuthConfig{
		Codec:  codec,
		Users:  &stubUsers{byEmail: map[string]*domain.User{user.Email: user}},
		Logger: zerolog.Nop(),
	}

	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"sub":    user.Email,
		"userId": user.ID,
		"roles":  []string{"DRIVER"},
		"iat":    now.Unix(),
		"exp":    now.Add(time.Minute).Unix(),
	})

	p, _ := runAuth(t, cfg, "/api/orders", "Bearer "+token)
	if p == nil {
		t.Fatalf("expected a principal")
	}
	if !p.HasRole(domain.RoleDriver) || p.HasRole(domain.RoleUser) {
		t.Fatalf("roles = %v, want token roles [DRIVER]", p.Roles)
	}
}

func TestAuthenticate_SkipPrefixes(t *testing.T) {
	cfg := AuthConfig{
		Codec:  testCodec(t),
		Users:  &stubUsers{byEmail: map[string]*domain.User{}},
		Logger: zerolog.Nop(),
	}

	for _, path := range []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/driver-login",
		"/api/auth/refresh",
		"/health",
		"/health/ready",
		"/metrics",
		"/swagger/index.html",
	} {
		// A malformed credential on a skipped path must not be inspected.
		p, called := runAuth(t, cfg, path, "Bearer garbage")
		if !called {
			t.Fatalf("%s: next handler not called", path)
		}
		if p != nil {
			t.Fatalf("%s: skipped path produced a principal", path)
		}
	}

	// Logout is not on the skip list: a valid credential must yield a
	// principal there so the handler can tell who is logging out.
	user := activeUser()
	cfg.Users = &stubUsers{byEmail: map[string]*domain.User{user.Email: user}}
	token, err := cfg.Codec.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	p, _ := runAuth(t, cfg, "/api/auth/logout", "Bearer "+token)
	if p == nil {
		t.Fatalf("logout should pass through authentication")
	}
}

func TestBearerToken(t *testing.T) {
	e := echo.New()
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"Bearer  abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		if got := bearerToken(c); got != tt.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
