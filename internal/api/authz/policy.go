// Package authz implements the route authorization policy: an ordered,
// immutable table of rules mapping (method, path pattern) to an access
// requirement, evaluated by a single interpreter. The table is built once
// at startup and read concurrently by every request; it is never mutated.
package authz

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/deliverly/marketplace-api/internal/core/domain"
	"github.com/deliverly/marketplace-api/internal/core/ports"
)

// Decision is the three-valued outcome of a policy evaluation. Denials are
// split so the transport layer can answer 401 versus 403.
type Decision int

const (
	// Allow lets the request through to the handler.
	Allow Decision = iota
	// DenyUnauthenticated rejects a request that carried no valid principal.
	DenyUnauthenticated
	// DenyForbidden rejects an authenticated principal lacking the required
	// role or ownership.
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Ownership names a dynamic predicate evaluated between the principal and
// a path-extracted resource id.
type Ownership string

const (
	// OwnSelf holds when the principal's user id equals the path id.
	OwnSelf Ownership = "self"
	// OwnMerchant holds when the principal administers the merchant
	// identified by the path id.
	OwnMerchant Ownership = "merchant"
)

type requirementKind int

const (
	reqPublic requirementKind = iota
	reqAuthenticated
	reqAnyRole
	reqOwnership
)

// Requirement is the access condition attached to a rule. Build values
// with the constructors below; the zero value denies everything.
type Requirement struct {
	kind      requirementKind
	roles     []domain.Role
	predicate Ownership
	param     string
}

// Public allows every request, principal or not.
func Public() Requirement {
	return Requirement{kind: reqPublic}
}

// Authenticated allows any request carrying a valid principal.
func Authenticated() Requirement {
	return Requirement{kind: reqAuthenticated}
}

// HasRole requires the principal to hold the given role.
func HasRole(role domain.Role) Requirement {
	return HasAnyRole(role)
}

// HasAnyRole requires the principal's role set to intersect the given set.
func HasAnyRole(roles ...domain.Role) Requirement {
	return Requirement{kind: reqAnyRole, roles: roles}
}

// Owns allows ADMIN unconditionally, otherwise requires the named
// ownership predicate to hold for the integer id captured by the given
// path parameter.
func Owns(predicate Ownership, param string) Requirement {
	return Requirement{kind: reqOwnership, predicate: predicate, param: param}
}

// Rule binds one (method, path pattern) pair to a requirement. Method "*"
// matches every verb. Patterns use ":name" for a single captured segment
// and a trailing "*" for zero or more remaining segments.
type Rule struct {
	Method  string
	Pattern string
	Require Requirement
}

// Engine evaluates the rule table. Rules are tested in declaration order
// and the first (method, pattern) match wins; when nothing matches, the
// default requirement is Authenticated, so anonymous requests to unknown
// routes are always denied.
type Engine struct {
	rules  []Rule
	perms  ports.PermissionChecker
	logger zerolog.Logger
}

func NewEngine(rules []Rule, perms ports.PermissionChecker, logger zerolog.Logger) *Engine {
	return &Engine{rules: rules, perms: perms, logger: logger}
}

// Decide returns the policy outcome for one request. It is safe for
// unbounded concurrent use: the engine holds no mutable state.
func (e *Engine) Decide(ctx context.Context, method, path string, p *domain.Principal) Decision {
	for _, rule := range e.rules {
		if rule.Method != "*" && !strings.EqualFold(rule.Method, method) {
			continue
		}
		params, ok := matchPattern(rule.Pattern, path)
		if !ok {
			continue
		}
		return e.evaluate(ctx, rule.Require, params, p)
	}
	return e.evaluate(ctx, Authenticated(), nil, p)
}

func (e *Engine) evaluate(ctx context.Context, req Requirement, params map[string]string, p *domain.Principal) Decision {
	switch req.kind {
	case reqPublic:
		return Allow

	case reqAuthenticated:
		if p == nil {
			return DenyUnauthenticated
		}
		return Allow

	case reqAnyRole:
		if p == nil {
			return DenyUnauthenticated
		}
		if p.HasAnyRole(req.roles...) {
			return Allow
		}
		return DenyForbidden

	case reqOwnership:
		if p == nil {
			return DenyUnauthenticated
		}
		if p.HasRole(domain.RoleAdmin) {
			return Allow
		}
		id, err := strconv.ParseInt(params[req.param], 10, 64)
		if err != nil {
			return DenyForbidden
		}
		if e.holds(ctx, req.predicate, p, id) {
			return Allow
		}
		return DenyForbidden
	}

	return DenyForbidden
}

func (e *Engine) holds(ctx context.Context, predicate Ownership, p *domain.Principal, id int64) bool {
	switch predicate {
	case OwnSelf:
		return e.perms.IsSelf(ctx, p, id)
	case OwnMerchant:
		return e.perms.OwnsMerchant(ctx, p, id)
	}
	e.logger.Warn().Str("predicate", string(predicate)).Msg("unknown ownership predicate")
	return false
}

// matchPattern matches a path against a pattern and returns the captured
// ":name" parameters. A trailing "*" segment matches zero or more
// remaining segments.
func matchPattern(pattern, path string) (map[string]string, bool) {
	want := splitPath(pattern)
	got := splitPath(path)

	var params map[string]string
	for i, seg := range want {
		if seg == "*" && i == len(want)-1 {
			return params, true
		}
		if i >= len(got) {
			return nil, false
		}
		switch {
		case strings.HasPrefix(seg, ":"):
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[seg[1:]] = got[i]
		case seg != got[i]:
			return nil, false
		}
	}
	if len(got) != len(want) {
		return nil, false
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
