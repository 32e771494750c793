package auth

import (
	"slices"

	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
)

// Permission names checked by the web layer.
const (
	// PermAdminRead allows viewing the moderation dashboard.
	PermAdminRead = models.PermAdminRead
	// PermAdminWrite allows publishing adverts and (de)activating users.
	PermAdminWrite = models.PermAdminWrite
	// PermUserRead allows viewing the own profile.
	PermUserRead = models.PermUserRead
	// PermUserWrite allows posting adverts.
	PermUserWrite = models.PermUserWrite
)

// PermissionSet is the set of permission names held by an identity.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from names.
func NewPermissionSet(names ...string) PermissionSet {
	s := make(PermissionSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}

	return s
}

// Has reports whether the set contains name. A nil set has no permissions.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the sorted permission names.
func (s PermissionSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}

	slices.Sort(out)

	return out
}
