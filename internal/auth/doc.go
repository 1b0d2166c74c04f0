// Package auth provides authentication and authorization for hydro-gateway.
//
// # Principals
//
// Two principal kinds exist: human users and hydro systems (devices). Both
// authenticate with a secret checked against a stored bcrypt hash and both
// receive HS256-signed JWTs carrying their identity, role, and the signing
// environment.
//
// # Token Validation
//
// Inbound tokens run a fixed five-step pipeline, each step failing fast with
// its own error:
//
//  1. Token text present            -> ErrMissingToken
//  2. "Bearer:" prefix (if required) -> ErrMalformedToken
//  3. Environment claim matches      -> ErrEnvironmentMismatch
//  4. Signature and required fields  -> ErrMalformedToken
//  5. Not expired                    -> ErrTokenExpired
//
// The environment claim is read without signature verification so step 3 can
// run before step 4; a token is never accepted without the full signature
// check. Two transports share the pipeline: the HTTP Authorization header
// (prefix required) and the socket-handshake query string (no prefix).
//
// # Request Context
//
// On success the resolved Principal is bound into the request context with
// WithPrincipal and read back by handlers via FromContext. The binding is
// request-scoped; nothing is stored globally.
//
// # Authorization
//
// Authorize enforces a minimum role by integer rank. AuthorizeOwnerOrRole
// additionally lets the owning user through regardless of rank, which is the
// policy for resource deletion.
package auth
