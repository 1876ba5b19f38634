package auth

import (
	"crypto/subtle"
	"net/http"
)

// Token authorizes requests carrying a static bearer token.
func Token(token string) Provider {
	want := []byte(token)
	return ProviderFunc(func(r *http.Request) Decision {
		got, ok := bearerToken(r)
		if !ok {
			return Deny(http.StatusUnauthorized, "missing bearer token")
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return Deny(http.StatusUnauthorized, "invalid token")
		}
		return Allow
	})
}
