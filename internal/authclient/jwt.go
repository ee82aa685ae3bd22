package authclient

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token shape issued by the auth microservice.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator verifies HS256 tokens locally. Used when the auth microservice
// shares its signing key instead of exposing /validate.
type JWTValidator struct {
	signingKey []byte
}

func NewJWT(signingKey string) *JWTValidator {
	return &JWTValidator{signingKey: []byte(signingKey)}
}

// Validate never returns an error for a bad token; it reports Valid=false.
func (v *JWTValidator) Validate(_ context.Context, token string) (Result, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return Result{Valid: false}, nil
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Role == "" {
		return Result{Valid: false}, nil
	}
	return Result{Valid: true, Role: claims.Role}, nil
}

// Sign issues a token for role, valid for ttl. It mints tokens locally for
// development setups that run without the auth microservice.
func (v *JWTValidator) Sign(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(v.signingKey)
}
