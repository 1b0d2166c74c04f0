// ABOUTME: Tests for role-rank authorization and the owner-or-role variant
// ABOUTME: Verifies rank comparison rather than enum identity

package auth

import (
	"errors"
	"testing"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

func userWithRole(id int, role dictionary.WebRole) UserPrincipal {
	return UserPrincipal{User: dictionary.User{ID: id, WebRole: role}}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		minimum   dictionary.WebRole
		wantErr   bool
	}{
		{"user meets user", userWithRole(1, dictionary.WebRoleUser), dictionary.WebRoleUser, false},
		{"user below developer", userWithRole(1, dictionary.WebRoleUser), dictionary.WebRoleDeveloper, true},
		{"developer meets developer", userWithRole(1, dictionary.WebRoleDeveloper), dictionary.WebRoleDeveloper, false},
		{"admin above developer", userWithRole(1, dictionary.WebRoleAdmin), dictionary.WebRoleDeveloper, false},
		{"admin below system", userWithRole(1, dictionary.WebRoleAdmin), dictionary.WebRoleSystem, true},
		{"system above admin", SystemPrincipal{}, dictionary.WebRoleAdmin, false},
		{"nil principal", nil, dictionary.WebRoleUser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.principal, tt.minimum)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Authorize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInsufficientPermissions) {
				t.Errorf("Authorize() error = %v, want ErrInsufficientPermissions", err)
			}
		})
	}
}

func TestAuthorizeOwnerOrRole(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		ownerID   int
		minimum   dictionary.WebRole
		wantErr   bool
	}{
		{"owner passes regardless of role", userWithRole(10, dictionary.WebRoleUser), 10, dictionary.WebRoleAdmin, false},
		{"non-owner user rejected", userWithRole(11, dictionary.WebRoleUser), 10, dictionary.WebRoleAdmin, true},
		{"non-owner admin passes", userWithRole(11, dictionary.WebRoleAdmin), 10, dictionary.WebRoleAdmin, false},
		{"system principal passes by rank", SystemPrincipal{}, 10, dictionary.WebRoleAdmin, false},
		{"nil principal rejected", nil, 10, dictionary.WebRoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeOwnerOrRole(tt.principal, tt.ownerID, tt.minimum)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AuthorizeOwnerOrRole() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
