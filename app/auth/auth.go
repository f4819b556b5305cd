// Package auth holds the request identity and the administrator policy
// that guards post management.
package auth

import "context"

// Identity is the principal of a request. The zero value is anonymous.
type Identity struct {
	UserID uint
}

// Authenticated reports whether the identity belongs to a logged in user.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// Policy decides whether an identity may manage posts.
type Policy interface {
	Allows(Identity) bool
}

// PolicyFunc adapts a function to a Policy.
type PolicyFunc func(Identity) bool

func (f PolicyFunc) Allows(id Identity) bool { return f(id) }

// AdminIDs allows authenticated identities whose user id is in the set.
type AdminIDs map[uint]struct{}

// NewAdminIDs builds the administrator set from user ids.
func NewAdminIDs(ids ...uint) AdminIDs {
	set := make(AdminIDs, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (a AdminIDs) Allows(id Identity) bool {
	if !id.Authenticated() {
		return false
	}
	_, ok := a[id.UserID]
	return ok
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored in ctx, or the anonymous
// identity.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
