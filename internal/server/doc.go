// ABOUTME: Package doc for server - HTTP API and realtime socket endpoint
// ABOUTME: Documents route layout, auth boundaries, and error status mapping

// Package server wires the HTTP API together.
//
// # Routes
//
// Unauthenticated:
//
//	POST /api/authenticate           user login
//	POST /api/system/authenticate    device login
//	POST /api/systems/register       device onboarding
//	GET  /subscription/socket        SSE stream, token in query string
//
// Everything else runs behind the auth middleware, which validates the
// Authorization header (Bearer: prefix required) and binds the principal to
// the request context. The subscription admin endpoints additionally require
// the DEVELOPER role.
//
// # Errors
//
// Handlers translate service errors at the boundary: credential and token
// failures map to 401, permission failures to 403, missing directory records
// to 404, validation problems to 400, everything else to 500 with a JSON
// error body.
package server
