// ABOUTME: Principal tagged union over human users and hydro systems
// ABOUTME: Exactly one variant is embedded per issued token

package auth

import (
	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// JwtType discriminates the principal variant embedded in a token.
type JwtType string

const (
	JwtTypeUser   JwtType = "USER"
	JwtTypeSystem JwtType = "SYSTEM"
)

// Principal is an authenticated identity: either a human user or a
// registered hydro system. The set of implementations is closed; callers
// type-switch at the few points behavior differs.
type Principal interface {
	// Kind returns the token type discriminator for the variant.
	Kind() JwtType
	// Role returns the principal's web role for rank comparisons.
	Role() dictionary.WebRole

	sealed()
}

// UserPrincipal is the human user variant of Principal.
type UserPrincipal struct {
	User dictionary.User
}

func (p UserPrincipal) Kind() JwtType { return JwtTypeUser }

func (p UserPrincipal) Role() dictionary.WebRole { return p.User.WebRole }

func (p UserPrincipal) sealed() {}

// SystemPrincipal is the hydro system (device) variant of Principal.
type SystemPrincipal struct {
	System dictionary.HydroSystem
}

func (p SystemPrincipal) Kind() JwtType { return JwtTypeSystem }

// Role reports the SYSTEM rank for devices; device tokens carry no user role.
func (p SystemPrincipal) Role() dictionary.WebRole { return dictionary.WebRoleSystem }

func (p SystemPrincipal) sealed() {}
