package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is a coarse permission grouping. The set is closed: the four values
// below are the only roles the platform knows about.
type Role string

const (
	// RoleUser is a customer who browses merchants and places orders.
	RoleUser Role = "USER"
	// RoleMerchantAdmin manages one merchant's catalogue and orders.
	RoleMerchantAdmin Role = "MERCHANT_ADMIN"
	// RoleDriver picks up and delivers orders.
	RoleDriver Role = "DRIVER"
	// RoleAdmin has full platform access.
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a role name to its Role value. Unknown names return false.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleMerchantAdmin:
		return RoleMerchantAdmin, true
	case RoleDriver:
		return RoleDriver, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInactiveUser = errors.New("user account is deactivated")
var ErrInvalidToken = errors.New("invalid or expired token")
var ErrForbidden = errors.New("access forbidden")

// User models a platform account. The auth core reads users but never
// mutates them outside of registration and last-login bookkeeping.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Phone        string     `json:"phone,omitempty"`
	Active       bool       `json:"active"`
	Roles        []Role     `json:"roles"`
	MerchantID   *int64     `json:"merchant_id,omitempty"`
	DriverID     *int64     `json:"driver_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(r Role) bool {
	for _, held := range u.Roles {
		if held == r {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// OwnsMerchant reports whether the user is a merchant admin managing the
// given merchant.
func (u *User) OwnsMerchant(merchantID int64) bool {
	return u.HasRole(RoleMerchantAdmin) && u.MerchantID != nil && *u.MerchantID == merchantID
}

// RoleNames returns the user's roles as plain strings, in declaration order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r))
	}
	return names
}
