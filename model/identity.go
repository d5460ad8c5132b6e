// model/identity.go
package model

import "time"

// Identity is the principal resolved from a bearer credential by the auth
// service. It lives for a single request and is never persisted.
//
// Permissions are scoped strings of the form "<resource-type>:<operation>";
// "<resource-type>:*" grants every operation on that type.
type Identity struct {
	UserID      string    `json:"uuid"`
	Superuser   bool      `json:"is_superuser"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Can reports whether the identity may perform op on the given resource key.
func (i *Identity) Can(key ResourceKey, op Operation) bool {
	if i.Superuser {
		return true
	}
	exact := key.Type + ":" + string(op)
	wildcard := key.Type + ":*"
	for _, p := range i.Permissions {
		if p == exact || p == wildcard {
			return true
		}
	}
	return false
}
