// ABOUTME: Sentinel errors for the authentication and authorization layer
// ABOUTME: Each maps to exactly one structured response at the request boundary

package auth

import "errors"

// Authentication errors. All surface as a 401 with a specific reason.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrMissingToken        = errors.New("missing JWT token")
	ErrMalformedToken      = errors.New("could not process JWT token")
	ErrEnvironmentMismatch = errors.New("JWT token doesn't match accessing environment")
	ErrTokenExpired        = errors.New("JWT token is expired")
)

// ErrInsufficientPermissions surfaces as a 403.
var ErrInsufficientPermissions = errors.New("insufficient permissions")
