// ABOUTME: Role-rank authorization checks applied after token validation
// ABOUTME: Minimum-role gate plus an owner-or-role variant for deletions

package auth

import (
	"fmt"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// Authorize fails with ErrInsufficientPermissions when the principal's role
// ranks below the minimum. Comparison is by rank integer, never enum
// identity; equal rank passes.
func Authorize(p Principal, minimum dictionary.WebRole) error {
	if p == nil {
		return fmt.Errorf("%w: not authenticated", ErrInsufficientPermissions)
	}
	if p.Role().Rank() < minimum.Rank() {
		return fmt.Errorf("%w: requires at least %s, principal has %s",
			ErrInsufficientPermissions, minimum, p.Role())
	}
	return nil
}

// AuthorizeOwnerOrRole succeeds when the principal is the user owning the
// resource OR ranks at or above the minimum role. Used by resource-deletion
// operations such as unregistering a system.
func AuthorizeOwnerOrRole(p Principal, resourceOwnerID int, minimum dictionary.WebRole) error {
	if user, ok := p.(UserPrincipal); ok && user.User.ID == resourceOwnerID {
		return nil
	}
	return Authorize(p, minimum)
}
