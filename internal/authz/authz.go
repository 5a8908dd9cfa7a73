// Package authz decides whether an actor may perform an operation. It holds
// no state and performs no I/O; callers load the resource owner themselves.
package authz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/cockroachdb/errors"
)

type Decision struct {
	Allowed bool
	Reason  string
}

// Allow grants access when the actor's role is in required (an empty list
// admits any role) and, if ownerID is non-empty, the actor owns the
// resource or is an admin. The ownership rule overrides required roles.
func Allow(actor domain.Actor, required []domain.Role, ownerID string) Decision {
	if ownerID != "" {
		if actor.ID == ownerID || actor.Role == domain.RoleAdmin {
			return Decision{Allowed: true}
		}
		return Decision{Reason: fmt.Sprintf("User %s is not allowed to modify a resource owned by another user", actor.ID)}
	}

	if len(required) > 0 && !slices.Contains(required, actor.Role) {
		return Decision{Reason: fmt.Sprintf("Role %s is not allowed to access this resource, requires one of: %s",
			actor.Role, joinRoles(required))}
	}
	return Decision{Allowed: true}
}

// Check is Allow expressed as an error wrapping domain.ErrForbidden.
func Check(actor domain.Actor, required []domain.Role, ownerID string) error {
	d := Allow(actor, required, ownerID)
	if d.Allowed {
		return nil
	}
	return errors.Mark(errors.New(d.Reason), domain.ErrForbidden)
}

func joinRoles(roles []domain.Role) string {
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = string(r)
	}
	return strings.Join(s, ", ")
}
