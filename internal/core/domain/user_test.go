package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"USER", RoleUser, true},
		{"user", RoleUser, true},
		{" merchant_admin ", RoleMerchantAdmin, true},
		{"DRIVER", RoleDriver, true},
		{"ADMIN", RoleAdmin, true},
		{"SUPERUSER", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestUserRoles(t *testing.T) {
	u := &User{Roles: []Role{RoleUser, RoleDriver}}

	if !u.HasRole(RoleUser) || !u.HasRole(RoleDriver) {
		t.Fatalf("user should hold USER and DRIVER")
	}
	if u.HasRole(RoleAdmin) {
		t.Fatalf("user must not hold ADMIN")
	}
	if !u.HasAnyRole(RoleAdmin, RoleDriver) {
		t.Fatalf("HasAnyRole should match DRIVER")
	}
	if u.HasAnyRole(RoleAdmin, RoleMerchantAdmin) {
		t.Fatalf("HasAnyRole matched a role the user does not hold")
	}
	if u.HasAnyRole() {
		t.Fatalf("HasAnyRole with no arguments must be false")
	}

	names := u.RoleNames()
	if len(names) != 2 || names[0] != "USER" || names[1] != "DRIVER" {
		t.Fatalf("RoleNames = %v, want [USER DRIVER]", names)
	}

	empty := &User{}
	if empty.HasRole(RoleUser) {
		t.Fatalf("roleless user must hold nothing")
	}
	if got := empty.RoleNames(); len(got) != 0 {
		t.Fatalf("RoleNames on roleless user = %v, want empty", got)
	}
}

func TestUserOwnsMerchant(t *testing.T) {
	merchantID := int64(42)

	owner := &User{Roles: []Role{RoleMerchantAdmin}, MerchantID: &merchantID}
	if !owner.OwnsMerchant(42) {
		t.Fatalf("merchant admin with matching id should own merchant 42")
	}
	if owner.OwnsMerchant(43) {
		t.Fatalf("merchant admin must not own merchant 43")
	}

	// The role alone is not enough.
	roleOnly := &User{Roles: []Role{RoleMerchantAdmin}}
	if roleOnly.OwnsMerchant(42) {
		t.Fatalf("merchant admin without an assignment owns nothing")
	}

	// Neither is the assignment alone.
	assignmentOnly := &User{Roles: []Role{RoleUser}, MerchantID: &merchantID}
	if assignmentOnly.OwnsMerchant(42) {
		t.Fatalf("assignment without the role must not grant ownership")
	}
}

func TestPrincipalRoles(t *testing.T) {
	p := &Principal{UserID: 7, Email: "seven@x.com", Roles: []Role{RoleUser}}
	if !p.HasRole(RoleUser) {
		t.Fatalf("principal should hold USER")
	}
	if p.HasRole(RoleAdmin) {
		t.Fatalf("principal must not hold ADMIN")
	}
	if !p.HasAnyRole(RoleAdmin, RoleUser) {
		t.Fatalf("HasAnyRole should match USER")
	}

	var nilPrincipal *Principal
	if nilPrincipal.HasRole(RoleUser) || nilPrincipal.HasAnyRole(RoleUser) {
		t.Fatalf("nil principal must hold nothing")
	}
}
