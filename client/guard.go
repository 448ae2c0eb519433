package client

import "fmt"

// Decision is the outcome of a route authorization check.
type Decision int

const (
	// Allow admits the navigation.
	Allow Decision = iota
	// DenyToLogin means no usable session exists; send the caller to the
	// login view.
	DenyToLogin
	// DenyToDefault means the session is live but its role may not open
	// this view; send the caller to the home view instead.
	DenyToDefault
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyToLogin:
		return "deny_to_login"
	case DenyToDefault:
		return "deny_to_default"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// RouteGuard decides whether the current session may open a named route.
// The route table is validated once at construction so a typo in a role
// name fails fast instead of silently denying forever.
type RouteGuard struct {
	store  *TokenStore
	routes map[string][]Role
}

// NewRouteGuard builds a guard over store. routes maps a route name to the
// roles allowed to open it; an empty role slice admits any signed-in role.
func NewRouteGuard(store *TokenStore, routes map[string][]Role) (*RouteGuard, error) {
	if store == nil {
		return nil, fmt.Errorf("route guard: nil token store")
	}
	for route, roles := range routes {
		if route == "" {
			return nil, fmt.Errorf("route guard: empty route name")
		}
		for _, r := range roles {
			if !r.Valid() {
				return nil, fmt.Errorf("route guard: route %q lists unknown role %q", route, r)
			}
		}
	}

	copied := make(map[string][]Role, len(routes))
	for route, roles := range routes {
		copied[route] = append([]Role(nil), roles...)
	}
	return &RouteGuard{store: store, routes: copied}, nil
}

// Authorize checks the current session against the named route. Routes not
// present in the table deny to home: an unlisted route is a closed route.
func (g *RouteGuard) Authorize(route string) Decision {
	if !g.store.IsValid() {
		return DenyToLogin
	}

	roles, known := g.routes[route]
	if !known {
		return DenyToDefault
	}
	if len(roles) == 0 {
		return Allow
	}

	current := g.store.Role()
	for _, r := range roles {
		if r == current {
			return Allow
		}
	}
	return DenyToDefault
}
