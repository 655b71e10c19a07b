// Package route maps subtask roles to provider ids. Routing is a pure
// lookup against a replaceable static table; it never fails.
package route

import "github.com/arbiterhq/arbiter/internal/domain"

// NoProvider is the sentinel provider id for roles handled outside the
// engine. The engine issues no call for a subtask routed here.
const NoProvider = "none"

// Router resolves a subtask role to the provider that should answer it.
type Router struct {
	table    map[domain.Role]string
	fallback string
}

// New creates a router from a role→provider table. Roles missing from the
// table resolve to the fallback provider.
func New(table map[domain.Role]string, fallback string) *Router {
	cp := make(map[domain.Role]string, len(table))
	for role, provider := range table {
		cp[role] = provider
	}
	return &Router{table: cp, fallback: fallback}
}

// Default returns the stock routing policy: safety goes to a distinct,
// more conservative provider than the creative and analytical roles, and
// execution is handled outside the engine.
func Default(creative, conservative string) *Router {
	return New(map[domain.Role]string{
		domain.RoleAnalysis:  creative,
		domain.RoleCopy:      creative,
		domain.RolePricing:   creative,
		domain.RoleSafety:    conservative,
		domain.RoleExecution: NoProvider,
	}, creative)
}

// Resolve returns the provider id for a role. Unknown roles fall back to
// the default provider; the function never fails.
func (r *Router) Resolve(role domain.Role) string {
	if provider, ok := r.table[role]; ok {
		return provider
	}
	return r.fallback
}

// Table returns a copy of the routing table for display.
func (r *Router) Table() map[domain.Role]string {
	cp := make(map[domain.Role]string, len(r.table))
	for role, provider := range r.table {
		cp[role] = provider
	}
	return cp
}
