// Package auth provides the authorization providers consulted before every
// media request.
package auth

import (
	"net/http"
	"strings"
)

// Decision is the outcome of an authorization check. It is serialized as the
// body of a 403 response when IsAuthorized is false.
type Decision struct {
	IsAuthorized bool   `json:"isAuthorized"`
	ErrorCode    int    `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Allow is the decision for an authorized request.
var Allow = Decision{IsAuthorized: true}

// Deny builds a rejection.
func Deny(code int, msg string) Decision {
	return Decision{IsAuthorized: false, ErrorCode: code, ErrorMessage: msg}
}

// Provider decides whether a request may reach the media API.
type Provider interface {
	IsAuthorized(r *http.Request) Decision
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(r *http.Request) Decision

// IsAuthorized calls f(r).
func (f ProviderFunc) IsAuthorized(r *http.Request) Decision {
	return f(r)
}

// Disabled authorizes every request. Suitable for local development only.
func Disabled() Provider {
	return ProviderFunc(func(*http.Request) Decision { return Allow })
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}
