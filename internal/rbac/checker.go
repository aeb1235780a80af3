package rbac

import (
	"context"
	"strings"
)

// Checker answers "may this role do this" against a role→permission
// policy. Grants are split at construction into exact permissions and
// "prefix*" wildcards so Has is a map hit plus a short prefix scan; a
// bare "*" grants everything.
type Checker struct {
	exact    map[string]map[string]bool
	prefixes map[string][]string
	all      map[string]bool
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	c := &Checker{
		exact:    map[string]map[string]bool{},
		prefixes: map[string][]string{},
		all:      map[string]bool{},
	}
	for role, perms := range rp {
		for _, p := range perms {
			switch {
			case p == "*":
				c.all[role] = true
			case strings.HasSuffix(p, "*"):
				c.prefixes[role] = append(c.prefixes[role], strings.TrimSuffix(p, "*"))
			default:
				if c.exact[role] == nil {
					c.exact[role] = map[string]bool{}
				}
				c.exact[role][p] = true
			}
		}
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	if c.all[role] || c.exact[role][perm] {
		return true
	}
	for _, pfx := range c.prefixes[role] {
		if strings.HasPrefix(perm, pfx) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func (c *Checker) All(role string, perms ...string) bool {
	for _, p := range perms {
		if !c.Has(role, p) {
			return false
		}
	}
	return true
}

// ---- role in context ----

type ctxKey struct{}

var ctxKeyRole = ctxKey{}

// WithRole stamps the authenticated role onto the context; the JWT
// middleware calls this once per request.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

func RoleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyRole).(string); ok {
		return s
	}
	return ""
}
