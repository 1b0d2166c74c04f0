// ABOUTME: Five-step inbound token validation shared by all transports
// ABOUTME: Presence, prefix, environment, signature/fields, expiry - each failing fast

package auth

import (
	"fmt"
	"log/slog"
	"strings"
)

// TokenPrefix is the transport marker expected ahead of the token on
// transports that require it (the HTTP Authorization header).
const TokenPrefix = "Bearer:"

// Validator runs the inbound token validation pipeline and resolves the
// embedded principal.
type Validator struct {
	codec  *JWTCodec
	logger *slog.Logger
}

// NewValidator creates a validator over the given codec. Pass nil logger
// for the default.
func NewValidator(codec *JWTCodec, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		codec:  codec,
		logger: logger.With("component", "validator"),
	}
}

// ValidateInbound validates raw token text from a transport and returns the
// principal embedded in the claims. The steps run in a fixed order, each
// failing fast:
//
//  1. Token text present (after stripping an optional prefix)
//  2. Prefix marker present, when the transport requires one
//  3. Environment claim equals this process's environment
//  4. Signature valid and all required claim fields decodable
//  5. Not expired (now >= expires-at fails)
func (v *Validator) ValidateInbound(raw string, requirePrefix bool) (Principal, error) {
	token := ExtractToken(raw)

	if token == "" {
		return nil, v.fail(ErrMissingToken)
	}

	if requirePrefix && !strings.HasPrefix(strings.TrimSpace(raw), TokenPrefix) {
		return nil, v.fail(fmt.Errorf("%w: token does not begin with %q", ErrMalformedToken, TokenPrefix))
	}

	env, err := v.codec.PeekEnvironment(token)
	if err != nil {
		return nil, v.fail(err)
	}
	if env != v.codec.Environment() {
		return nil, v.fail(fmt.Errorf("%w: token signed for %q, accepting environment is %q",
			ErrEnvironmentMismatch, env, v.codec.Environment()))
	}

	claims, err := v.codec.Parse(token)
	if err != nil {
		return nil, v.fail(err)
	}

	if v.codec.IsExpired(claims) {
		return nil, v.fail(fmt.Errorf("%w: please re-authenticate", ErrTokenExpired))
	}

	return claims.Principal(), nil
}

// fail logs the validation failure for security monitoring and returns it.
func (v *Validator) fail(err error) error {
	v.logger.Warn("auth failure", "reason", err.Error())
	return err
}

// ExtractToken strips the transport prefix and surrounding whitespace from
// raw token text. Text without the prefix is returned trimmed as-is.
func ExtractToken(raw string) string {
	return strings.TrimSpace(strings.Replace(raw, TokenPrefix, "", 1))
}
