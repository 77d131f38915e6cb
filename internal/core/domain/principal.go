package domain

// Principal is the verified identity attached to a single request. It is an
// immutable snapshot built by the authentication middleware and discarded
// when the request finishes; nothing is retained across requests.
type Principal struct {
	UserID int64
	Email  string
	Roles  []Role
}

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(r Role) bool {
	if p == nil {
		return false
	}
	for _, held := range p.Roles {
		if held == r {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal holds at least one of the given
// roles. An empty argument list never matches.
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}
