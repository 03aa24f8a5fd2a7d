// pkg/auth/jwt.go
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
)

type Claims struct {
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Expired reports whether the claims carry an expiry in the past. Claims
// without an expiry are treated as expired.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Before(now)
}

func (c *Claims) IsAdmin() bool { return c.Role == domain.RoleAdmin }

// GenerateToken signs a credential for the given identity. Server side only.
func GenerateToken(secret []byte, phoneNumber, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		PhoneNumber: phoneNumber,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken verifies the signature and returns the claims. Server side.
func ValidateToken(secret []byte, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	return claims, nil
}

// DecodeClaims extracts claims without verifying the signature. The client
// uses this for role and identity display; the server remains the authority
// and re-validates on every call.
func DecodeClaims(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	return claims, nil
}
