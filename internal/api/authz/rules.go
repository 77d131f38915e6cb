package authz

import (
	"net/http"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// DefaultRules is the platform's route policy table. Order matters: more
// specific patterns come before the parameterised ones that would shadow
// them. Requests matching nothing here fall back to Authenticated.
func DefaultRules() []Rule {
	return []Rule{
		// ---- Public: auth, probes, docs ----
		{Method: "*", Pattern: "/api/auth/*", Require: Public()},
		{Method: http.MethodGet, Pattern: "/health", Require: Public()},
		{Method: http.MethodGet, Pattern: "/health/*", Require: Public()},
		{Method: http.MethodGet, Pattern: "/metrics", Require: Public()},
		{Method: http.MethodGet, Pattern: "/swagger/*", Require: Public()},

		// ---- Users ----
		{Method: http.MethodGet, Pattern: "/api/users/me", Require: Authenticated()},
		{Method: "*", Pattern: "/api/users/:id/roles/*", Require: HasRole(domain.RoleAdmin)},
		{Method: "*", Pattern: "/api/users/:id/merchant", Require: HasRole(domain.RoleAdmin)},
		{Method: http.MethodPost, Pattern: "/api/users/:id/verify-age", Require: Authenticated()},
		{Method: http.MethodGet, Pattern: "/api/users/:id", Require: Owns(OwnSelf, "id")},
		{Method: http.MethodPut, Pattern: "/api/users/:id", Require: Owns(OwnSelf, "id")},
		{Method: http.MethodGet, Pattern: "/api/users", Require: HasRole(domain.RoleAdmin)},
		{Method: http.MethodDelete, Pattern: "/api/users/*", Require: HasRole(domain.RoleAdmin)},

		// ---- Merchants ----
		{Method: "*", Pattern: "/api/merchants/my-merchant/*", Require: HasRole(domain.RoleMerchantAdmin)},
		{Method: http.MethodGet, Pattern: "/api/merchants/search/*", Require: Authenticated()},
		{Method: http.MethodGet, Pattern: "/api/merchants/by-distance", Require: Authenticated()},
		{Method: http.MethodGet, Pattern: "/api/merchants/name/*", Require: Authenticated()},
		{Method: http.MethodGet, Pattern: "/api/merchants/:id", Require: HasRole(domain.RoleAdmin)},
		{Method: http.MethodPut, Pattern: "/api/merchants/:id", Require: Owns(OwnMerchant, "id")},
		{Method: http.MethodGet, Pattern: "/api/merchants", Require: Authenticated()},
		{Method: http.MethodPost, Pattern: "/api/merchants", Require: HasRole(domain.RoleAdmin)},
		{Method: http.MethodDelete, Pattern: "/api/merchants/*", Require: HasRole(domain.RoleAdmin)},

		// ---- Products ----
		{Method: http.MethodGet, Pattern: "/api/products/*", Require: Authenticated()},
		{Method: http.MethodPost, Pattern: "/api/products/*", Require: HasAnyRole(domain.RoleAdmin, domain.RoleMerchantAdmin)},
		{Method: http.MethodPut, Pattern: "/api/products/*", Require: HasAnyRole(domain.RoleAdmin, domain.RoleMerchantAdmin)},
		{Method: http.MethodDelete, Pattern: "/api/products/*", Require: HasAnyRole(domain.RoleAdmin, domain.RoleMerchantAdmin)},

		// ---- Orders ----
		{Method: http.MethodGet, Pattern: "/api/orders/my-orders/*", Require: HasRole(domain.RoleUser)},
		{Method: "*", Pattern: "/api/orders/merchant/*", Require: HasRole(domain.RoleMerchantAdmin)},
		{Method: "*", Pattern: "/api/orders/driver/*", Require: HasRole(domain.RoleDriver)},
		{Method: http.MethodPut, Pattern: "/api/orders/:id/cancel", Require: HasRole(domain.RoleUser)},
		{Method: http.MethodPost, Pattern: "/api/orders", Require: HasRole(domain.RoleUser)},
		{Method: http.MethodGet, Pattern: "/api/orders/:id", Require: Authenticated()},
		{Method: http.MethodGet, Pattern: "/api/orders", Require: HasRole(domain.RoleAdmin)},

		// ---- Payments ----
		{Method: "*", Pattern: "/api/payments/*", Require: Authenticated()},

		// ---- Deliveries ----
		{Method: "*", Pattern: "/api/deliveries/driver/*", Require: HasRole(domain.RoleDriver)},
		{Method: http.MethodPost, Pattern: "/api/deliveries/:id/pickup", Require: HasRole(domain.RoleDriver)},
		{Method: http.MethodPost, Pattern: "/api/deliveries/:id/deliver", Require: HasRole(domain.RoleDriver)},
		{Method: http.MethodPost, Pattern: "/api/deliveries/:id/verify-age", Require: HasRole(domain.RoleDriver)},
		{Method: http.MethodPut, Pattern: "/api/deliveries/:id/location", Require: HasRole(domain.RoleDriver)},
		{Method: http.MethodGet, Pattern: "/api/deliveries", Require: HasRole(domain.RoleAdmin)},

		// ---- Drivers ----
		{Method: "*", Pattern: "/api/drivers/my-profile/*", Require: HasRole(domain.RoleDriver)},
		{Method: http.MethodGet, Pattern: "/api/drivers/available", Require: HasRole(domain.RoleAdmin)},
		{Method: http.MethodPut, Pattern: "/api/drivers/:id/certification", Require: HasRole(domain.RoleAdmin)},
		{Method: http.MethodGet, Pattern: "/api/drivers/:id", Require: HasRole(domain.RoleAdmin)},
		{Method: http.MethodGet, Pattern: "/api/drivers", Require: HasRole(domain.RoleAdmin)},

		// ---- Platform administration ----
		{Method: "*", Pattern: "/api/admin/*", Require: HasRole(domain.RoleAdmin)},
	}
}
