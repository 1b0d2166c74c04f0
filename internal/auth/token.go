// ABOUTME: JWT issuance and parsing for user and system principals
// ABOUTME: Uses HS256 signing with a single symmetric key from configuration

package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hydroponics-system/hydro-api-microservice/internal/dictionary"
)

// MinSecretLength is the minimum signing key length in bytes.
const MinSecretLength = 32

// Claims are the decoded contents of a hydro token.
type Claims struct {
	Type          JwtType
	SubjectID     int
	Email         string
	WebRole       dictionary.WebRole
	ResetPassword bool
	UUID          string
	PartNumber    dictionary.PartNumber
	Environment   dictionary.Environment
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Principal reconstructs the principal variant embedded in the claims.
func (c *Claims) Principal() Principal {
	if c.Type == JwtTypeSystem {
		return SystemPrincipal{System: dictionary.HydroSystem{
			ID:         c.SubjectID,
			UUID:       c.UUID,
			PartNumber: c.PartNumber,
		}}
	}
	return UserPrincipal{User: dictionary.User{
		ID:            c.SubjectID,
		Email:         c.Email,
		WebRole:       c.WebRole,
		ResetPassword: c.ResetPassword,
	}}
}

// JWTCodec issues and parses signed tokens. The signing key and environment
// are immutable after construction; the clock is injectable for tests.
type JWTCodec struct {
	secret []byte
	env    dictionary.Environment
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTCodec creates a codec for the given symmetric key, signing
// environment, and token lifetime.
func NewJWTCodec(secret []byte, env dictionary.Environment, ttl time.Duration) (*JWTCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	if !env.IsValid() {
		return nil, fmt.Errorf("unknown signing environment %q", env)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}
	return &JWTCodec{
		secret: secret,
		env:    env,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Environment returns the environment this codec signs and validates for.
func (j *JWTCodec) Environment() dictionary.Environment {
	return j.env
}

// TTL returns the configured token lifetime.
func (j *JWTCodec) TTL() time.Duration {
	return j.ttl
}

// Issue signs a new token embedding the given principal. Expiration is
// issued-at plus the configured TTL.
func (j *JWTCodec) Issue(p Principal) (string, error) {
	now := j.now()

	claims := jwt.MapClaims{
		"type": string(p.Kind()),
		"env":  string(j.env),
		"iat":  now.Unix(),
		"exp":  now.Add(j.ttl).Unix(),
	}

	switch v := p.(type) {
	case UserPrincipal:
		claims["sub"] = strconv.Itoa(v.User.ID)
		claims["email"] = v.User.Email
		claims["webRole"] = string(v.User.WebRole)
		if v.User.ResetPassword {
			claims["resetPassword"] = true
		}
	case SystemPrincipal:
		claims["sub"] = strconv.Itoa(v.System.ID)
		claims["uuid"] = v.System.UUID
		claims["partNumber"] = string(v.System.PartNumber)
	default:
		return "", fmt.Errorf("unknown principal kind %q", p.Kind())
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Parse verifies the signature and decodes the claims. Expiration is NOT
// checked here; the validator applies its own expiry step so the boundary
// (now >= expires-at fails) is enforced uniformly.
func (j *JWTCodec) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	).Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid signature", ErrMalformedToken)
	}

	return decodeClaims(mapClaims)
}

// ExpiresAt returns the expiration instant of a token.
func (j *JWTCodec) ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := j.Parse(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt, nil
}

// IsExpired reports whether the claims have expired. A token is expired at
// the exact expiration instant.
func (j *JWTCodec) IsExpired(claims *Claims) bool {
	return !j.now().Before(claims.ExpiresAt)
}

// PeekEnvironment decodes the environment claim WITHOUT verifying the
// signature. Only the validator uses this, to order the environment check
// ahead of full signature validation; the token is never trusted from this
// call alone.
func (j *JWTCodec) PeekEnvironment(tokenString string) (dictionary.Environment, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unreadable claims", ErrMalformedToken)
	}

	envStr, ok := mapClaims["env"].(string)
	if !ok || envStr == "" {
		return "", fmt.Errorf("%w: missing env claim", ErrMalformedToken)
	}
	return dictionary.Environment(envStr), nil
}

// decodeClaims extracts the typed claim set from raw map claims.
func decodeClaims(mc jwt.MapClaims) (*Claims, error) {
	claims := &Claims{}

	typeStr, ok := mc["type"].(string)
	if !ok {
		return nil, missingClaim("type")
	}
	claims.Type = JwtType(typeStr)
	if claims.Type != JwtTypeUser && claims.Type != JwtTypeSystem {
		return nil, fmt.Errorf("%w: unknown token type %q", ErrMalformedToken, typeStr)
	}

	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return nil, missingClaim("sub")
	}
	id, err := strconv.Atoi(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: non-numeric subject %q", ErrMalformedToken, sub)
	}
	claims.SubjectID = id

	envStr, ok := mc["env"].(string)
	if !ok || envStr == "" {
		return nil, missingClaim("env")
	}
	claims.Environment = dictionary.Environment(envStr)

	iat, err := mc.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, missingClaim("iat")
	}
	claims.IssuedAt = iat.Time

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, missingClaim("exp")
	}
	claims.ExpiresAt = exp.Time

	switch claims.Type {
	case JwtTypeUser:
		email, ok := mc["email"].(string)
		if !ok || email == "" {
			return nil, missingClaim("email")
		}
		claims.Email = email

		roleStr, ok := mc["webRole"].(string)
		if !ok || roleStr == "" {
			return nil, missingClaim("webRole")
		}
		role, err := dictionary.ParseWebRole(roleStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
		claims.WebRole = role

		if reset, ok := mc["resetPassword"].(bool); ok {
			claims.ResetPassword = reset
		}

	case JwtTypeSystem:
		uuid, ok := mc["uuid"].(string)
		if !ok || uuid == "" {
			return nil, missingClaim("uuid")
		}
		claims.UUID = uuid

		if pn, ok := mc["partNumber"].(string); ok {
			claims.PartNumber = dictionary.PartNumber(pn)
		}
	}

	return claims, nil
}

func missingClaim(name string) error {
	return fmt.Errorf("%w: missing claim %q", ErrMalformedToken, name)
}
