package session

import (
	"strings"

	"github.com/dmitrijs2005/rolekeeper/internal/identity"
	"github.com/dmitrijs2005/rolekeeper/internal/roles"
)

// User is a platform identity paired with its resolved role.
type User struct {
	Identity identity.Identity
	Role     string
}

func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return strings.EqualFold(u.Role, strings.TrimSpace(role))
}

func (u *User) IsAdmin() bool {
	return u.HasRole(roles.AdminRole)
}

// State is the snapshot readers observe.
type State struct {
	// User is nil when nobody is signed in or when reconciliation failed.
	User *User
	// Ready reports that the initial session resolution has completed.
	Ready bool
	// Err holds the failure of the last reconciliation, if any.
	Err error
}

// SignedIn reports whether a user is present.
func (s State) SignedIn() bool {
	return s.User != nil
}
