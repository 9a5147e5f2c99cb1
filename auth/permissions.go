package auth

import (
	"sort"

	"github.com/jrsteele09/go-waterres-client/internal/utils"
)

// Authorizer answers permission and role checks for the current user. An
// empty requirement is always satisfied.
type Authorizer interface {
	HasPermission(permission string) bool
	HasAnyPermission(permissions ...string) bool
	HasAllPermissions(permissions ...string) bool
	HasRole(role string) bool
	HasAnyRole(roles ...string) bool
	HasAllRoles(roles ...string) bool
}

type PermissionSet map[string]struct{}

func NewPermissionSet(permissions ...string) PermissionSet {
	return PermissionSet(utils.StringSet(permissions...))
}

func (s PermissionSet) Has(permission string) bool        { return hasOne(s, permission) }
func (s PermissionSet) HasAny(permissions ...string) bool { return hasAny(s, permissions) }
func (s PermissionSet) HasAll(permissions ...string) bool { return hasAll(s, permissions) }
func (s PermissionSet) Sorted() []string                  { return sortedKeys(s) }

type RoleSet map[string]struct{}

func NewRoleSet(roles ...string) RoleSet {
	return RoleSet(utils.StringSet(roles...))
}

func (s RoleSet) Has(role string) bool        { return hasOne(s, role) }
func (s RoleSet) HasAny(roles ...string) bool { return hasAny(s, roles) }
func (s RoleSet) HasAll(roles ...string) bool { return hasAll(s, roles) }
func (s RoleSet) Sorted() []string            { return sortedKeys(s) }

// Grants is an immutable Authorizer over fixed sets.
type Grants struct {
	Permissions PermissionSet
	Roles       RoleSet
}

var _ Authorizer = Grants{}

func (g Grants) HasPermission(permission string) bool {
	return g.Permissions.Has(permission)
}

func (g Grants) HasAnyPermission(permissions ...string) bool {
	return g.Permissions.HasAny(permissions...)
}

func (g Grants) HasAllPermissions(permissions ...string) bool {
	return g.Permissions.HasAll(permissions...)
}

func (g Grants) HasRole(role string) bool {
	return g.Roles.Has(role)
}

func (g Grants) HasAnyRole(roles ...string) bool {
	return g.Roles.HasAny(roles...)
}

func (g Grants) HasAllRoles(roles ...string) bool {
	return g.Roles.HasAll(roles...)
}

func hasOne[S ~map[string]struct{}](set S, want string) bool {
	if want == "" {
		return true
	}
	_, ok := set[want]
	return ok
}

func hasAny[S ~map[string]struct{}](set S, wants []string) bool {
	if len(wants) == 0 {
		return true
	}
	for _, w := range wants {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

func hasAll[S ~map[string]struct{}](set S, wants []string) bool {
	for _, w := range wants {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys[S ~map[string]struct{}](set S) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
