// ABOUTME: HTTP middleware binding validated principals to request contexts
// ABOUTME: Maps validation and authorization failures onto JSON error responses

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// Middleware validates the Authorization header on every request and binds
// the resulting principal to the request context. Requests without a valid
// token are rejected before the wrapped handler runs.
func Middleware(validator *Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := validator.ValidateInbound(r.Header.Get("Authorization"), true)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole rejects requests whose bound principal ranks below the
// minimum role. It must run behind Middleware.
func RequireRole(minimum dictionary.WebRole, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := Authorize(FromContext(r.Context()), minimum); err != nil {
			WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteError maps an auth error onto its HTTP status and writes a JSON
// error body.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrMalformedToken),
		errors.Is(err, ErrEnvironmentMismatch),
		errors.Is(err, ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrInsufficientPermissions):
		status = http.StatusForbidden
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
