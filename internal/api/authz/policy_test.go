package authz

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// stubPermissions answers ownership from fixed data: IsSelf compares ids,
// OwnsMerchant consults a per-email set of merchant ids.
type stubPermissions struct {
	merchants map[string]map[int64]bool
}

func (s *stubPermissions) IsSelf(_ context.Context, p *domain.Principal, userID int64) bool {
	return p != nil && p.UserID == userID
}

func (s *stubPermissions) OwnsMerchant(_ context.Context, p *domain.Principal, merchantID int64) bool {
	if p == nil {
		return false
	}
	return s.merchants[p.Email][merchantID]
}

func newTestEngine(rules []Rule) *Engine {
	perms := &stubPermissions{
		merchants: map[string]map[int64]bool{
			"olive@x.com": {42: true},
		},
	}
	return NewEngine(rules, perms, zerolog.Nop())
}

func principal(id int64, email string, roles ...domain.Role) *domain.Principal {
	return &domain.Principal{UserID: id, Email: email, Roles: roles}
}

func TestEngine_DefaultRules(t *testing.T) {
	engine := newTestEngine(DefaultRules())
	ctx := context.Background()

	user := principal(7, "seven@x.com", domain.RoleUser)
	admin := principal(1, "root@x.com", domain.RoleAdmin)
	driver := principal(3, "drv@x.com", domain.RoleDriver)
	merchant := principal(5, "olive@x.com", domain.RoleMerchantAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		p      *domain.Principal
		want   Decision
	}{
		{"login is public", http.MethodPost, "/api/auth/login", nil, Allow},
		{"health is public", http.MethodGet, "/health", nil, Allow},
		{"readiness is public", http.MethodGet, "/health/ready", nil, Allow},
		{"metrics is public", http.MethodGet, "/metrics", nil, Allow},
		{"swagger is public", http.MethodGet, "/swagger/index.html", nil, Allow},

		{"me needs a principal", http.MethodGet, "/api/users/me", nil, DenyUnauthenticated},
		{"me with principal", http.MethodGet, "/api/users/me", user, Allow},
		{"own profile", http.MethodGet, "/api/users/7", user, Allow},
		{"someone else's profile", http.MethodGet, "/api/users/8", user, DenyForbidden},
		{"admin reads any profile", http.MethodGet, "/api/users/8", admin, Allow},
		{"update own profile", http.MethodPut, "/api/users/7", user, Allow},
		{"role grant is admin only", http.MethodPost, "/api/users/7/roles/DRIVER", user, DenyForbidden},
		{"role grant by admin", http.MethodPost, "/api/users/7/roles/DRIVER", admin, Allow},
		{"user listing is admin only", http.MethodGet, "/api/users", user, DenyForbidden},
		{"user delete is admin only", http.MethodDelete, "/api/users/7", user, DenyForbidden},

		{"own merchant update", http.MethodPut, "/api/merchants/42", merchant, Allow},
		{"foreign merchant update", http.MethodPut, "/api/merchants/43", merchant, DenyForbidden},
		{"admin updates any merchant", http.MethodPut, "/api/merchants/43", admin, Allow},
		{"merchant listing is open to principals", http.MethodGet, "/api/merchants", user, Allow},
		{"merchant creation is admin only", http.MethodPost, "/api/merchants", merchant, DenyForbidden},
		{"my-merchant needs the role", http.MethodGet, "/api/merchants/my-merchant/orders", user, DenyForbidden},
		{"my-merchant with the role", http.MethodGet, "/api/merchants/my-merchant/orders", merchant, Allow},

		{"product browse", http.MethodGet, "/api/products/12", user, Allow},
		{"product create by customer", http.MethodPost, "/api/products", user, DenyForbidden},
		{"product create by merchant", http.MethodPost, "/api/products", merchant, Allow},

		{"order placement by customer", http.MethodPost, "/api/orders", user, Allow},
		{"order placement by driver", http.MethodPost, "/api/orders", driver, DenyForbidden},
		{"order cancel by customer", http.MethodPut, "/api/orders/9/cancel", user, Allow},
		{"driver order queue", http.MethodGet, "/api/orders/driver/assigned", driver, Allow},
		{"driver order queue by customer", http.MethodGet, "/api/orders/driver/assigned", user, DenyForbidden},
		{"order listing is admin only", http.MethodGet, "/api/orders", user, DenyForbidden},

		{"delivery pickup by driver", http.MethodPost, "/api/deliveries/5/pickup", driver, Allow},
		{"delivery pickup by customer", http.MethodPost, "/api/deliveries/5/pickup", user, DenyForbidden},

		{"admin surface", http.MethodGet, "/api/admin/audit", admin, Allow},
		{"admin surface by customer", http.MethodGet, "/api/admin/audit", user, DenyForbidden},

		{"unknown route, anonymous", http.MethodGet, "/api/unknown", nil, DenyUnauthenticated},
		{"unknown route, authenticated", http.MethodGet, "/api/unknown", user, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Decide(ctx, tt.method, tt.path, tt.p); got != tt.want {
				t.Fatalf("Decide(%s %s) = %v, want %v", tt.method, tt.path, got, tt.want)
			}
		})
	}
}

func TestEngine_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Method: http.MethodGet, Pattern: "/api/things/special", Require: Public()},
		{Method: http.MethodGet, Pattern: "/api/things/:id", Require: HasRole(domain.RoleAdmin)},
	}
	engine := newTestEngine(rules)
	ctx := context.Background()

	if got := engine.Decide(ctx, http.MethodGet, "/api/things/special", nil); got != Allow {
		t.Fatalf("specific rule should win, got %v", got)
	}
	if got := engine.Decide(ctx, http.MethodGet, "/api/things/12", nil); got != DenyUnauthenticated {
		t.Fatalf("parameterised rule should apply, got %v", got)
	}
}

func TestEngine_MethodMatching(t *testing.T) {
	rules := []Rule{
		{Method: http.MethodGet, Pattern: "/api/things", Require: Public()},
	}
	engine := newTestEngine(rules)
	ctx := context.Background()

	if got := engine.Decide(ctx, "get", "/api/things", nil); got != Allow {
		t.Fatalf("method match must be case-insensitive, got %v", got)
	}
	// POST has no rule and falls through to the authenticated default.
	if got := engine.Decide(ctx, http.MethodPost, "/api/things", nil); got != DenyUnauthenticated {
		t.Fatalf("unmatched method must hit the default, got %v", got)
	}
}

func TestEngine_OwnershipEdgeCases(t *testing.T) {
	rules := []Rule{
		{Method: http.MethodGet, Pattern: "/api/users/:id", Require: Owns(OwnSelf, "id")},
	}
	engine := newTestEngine(rules)
	ctx := context.Background()

	if got := engine.Decide(ctx, http.MethodGet, "/api/users/7", nil); got != DenyUnauthenticated {
		t.Fatalf("anonymous ownership check = %v, want DenyUnauthenticated", got)
	}

	p := principal(7, "seven@x.com", domain.RoleUser)
	if got := engine.Decide(ctx, http.MethodGet, "/api/users/abc", p); got != DenyForbidden {
		t.Fatalf("non-numeric id = %v, want DenyForbidden", got)
	}
}

func TestEngine_ZeroRequirementDenies(t *testing.T) {
	rules := []Rule{
		{Method: "*", Pattern: "/api/things/*", Require: Requirement{}},
	}
	engine := newTestEngine(rules)

	p := principal(1, "root@x.com", domain.RoleAdmin)
	if got := engine.Decide(context.Background(), http.MethodGet, "/api/things/1", p); got != DenyForbidden {
		t.Fatalf("zero requirement = %v, want DenyForbidden", got)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		ok      bool
		params  map[string]string
	}{
		{"/api/users/:id", "/api/users/7", true, map[string]string{"id": "7"}},
		{"/api/users/:id", "/api/users/7/roles", false, nil},
		{"/api/users/:id", "/api/users", false, nil},
		{"/api/auth/*", "/api/auth/login", true, nil},
		{"/api/auth/*", "/api/auth", true, nil},
		{"/api/auth/*", "/api/auth/a/b/c", true, nil},
		{"/api/auth/*", "/api/other/login", false, nil},
		{"/health", "/health", true, nil},
		{"/health", "/health/", true, nil},
		{"/api/users/:id/roles/:role", "/api/users/7/roles/DRIVER", true, map[string]string{"id": "7", "role": "DRIVER"}},
	}

	for _, tt := range tests {
		params, ok := matchPattern(tt.pattern, tt.path)
		if ok != tt.ok {
			t.Fatalf("matchPattern(%q, %q) ok = %v, want %v", tt.pattern, tt.path, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if len(params) != len(tt.params) {
			t.Fatalf("matchPattern(%q, %q) params = %v, want %v", tt.pattern, tt.path, params, tt.params)
		}
		for k, v := range tt.params {
			if params[k] != v {
				t.Fatalf("matchPattern(%q, %q) params = %v, want %v", tt.pattern, tt.path, params, tt.params)
			}
		}
	}
}
