// Package dictionary holds the shared domain vocabulary for the hydro
// platform: user and hydro system records, web role ranking, deployment
// environments, and part numbers.
//
// # Web Roles
//
// Roles form a strictly ordered set compared by integer rank:
//
//	USER(1) < DEVELOPER(2) < ADMIN(3) < SYSTEM(4)
//
// Permission checks compare ranks, never enum identity, so new roles can be
// inserted without touching comparison logic.
//
// # Environments
//
// Every issued token is stamped with the environment it was signed in
// (LOCAL, TEST, DEVELOPMENT, PRODUCTION). A validating process only accepts
// tokens whose environment claim matches its own configured environment.
package dictionary
