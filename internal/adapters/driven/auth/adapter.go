package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
	"github.com/meridian-labs/meridian-core/internal/core/ports/driven"
)

// Ensure Adapter implements TokenVerifier
var _ driven.TokenVerifier = (*Adapter)(nil)

// tenantClaims carries the tenant identity in the JWT
type tenantClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Adapter verifies tenant bearer tokens using HS256 JWTs.
// Identity management lives outside this service; tokens are issued by the
// surrounding platform and only need to resolve to a tenant here.
type Adapter struct {
	jwtSecret []byte
}

// NewAdapter creates a new auth adapter with the given JWT secret
func NewAdapter(jwtSecret string) *Adapter {
	return &Adapter{jwtSecret: []byte(jwtSecret)}
}

// GenerateToken creates a signed tenant token. Used for local development
// and tests; production tokens come from the platform's identity service.
func (a *Adapter) GenerateToken(tenantID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tenantClaims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// VerifyToken validates the token and returns the tenant ID
func (a *Adapter) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tenantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*tenantClaims)
	if !ok || !token.Valid || claims.TenantID == "" {
		return "", domain.ErrUnauthorized
	}

	return claims.TenantID, nil
}
