package service

import "go-character-api/internal/model"

// RoleSet is the set of roles permitted to perform an operation.
type RoleSet map[model.Role]struct{}

func NewRoleSet(roles ...model.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(role model.Role) bool {
	_, ok := s[role]
	return ok
}

// Authorize reports whether claims carry a role in allowed. Missing claims
// or an empty role are never authorized.
func Authorize(claims *model.AuthClaims, allowed RoleSet) bool {
	if claims == nil || claims.Role == "" {
		return false
	}
	return allowed.Contains(claims.Role)
}
