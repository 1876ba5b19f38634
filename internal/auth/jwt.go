package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT claims accepted by the media API.
type Claims struct {
	jwt.RegisteredClaims
}

// JWT authorizes requests carrying an HS256 bearer token signed with secret.
func JWT(secret string) Provider {
	key := []byte(secret)
	return ProviderFunc(func(r *http.Request) Decision {
		tok, ok := bearerToken(r)
		if !ok {
			return Deny(http.StatusUnauthorized, "missing bearer token")
		}
		if _, err := validateToken(key, tok); err != nil {
			return Deny(http.StatusUnauthorized, "invalid token: "+err.Error())
		}
		return Allow
	})
}

func validateToken(key []byte, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// IssueToken signs an HS256 token for subject valid for ttl.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}
