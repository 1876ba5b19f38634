package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(authHeader string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/list/", nil)
	if authHeader != "" {
		r.Header.Set("Authorization", authHeader)
	}
	return r
}

func TestDisabled(t *testing.T) {
	assert.True(t, Disabled().IsAuthorized(request("")).IsAuthorized)
}

func TestToken(t *testing.T) {
	p := Token("s3cret")

	assert.True(t, p.IsAuthorized(request("Bearer s3cret")).IsAuthorized)

	d := p.IsAuthorized(request(""))
	assert.False(t, d.IsAuthorized)
	assert.Equal(t, http.StatusUnauthorized, d.ErrorCode)
	assert.Equal(t, "missing bearer token", d.ErrorMessage)

	assert.False(t, p.IsAuthorized(request("Bearer nope")).IsAuthorized)
	assert.False(t, p.IsAuthorized(request("Basic s3cret")).IsAuthorized)
}

func TestJWT(t *testing.T) {
	p := JWT("signing-key")

	tok, err := IssueToken("signing-key", "editor", time.Hour)
	require.NoError(t, err)
	assert.True(t, p.IsAuthorized(request("Bearer "+tok)).IsAuthorized)

	other, err := IssueToken("other-key", "editor", time.Hour)
	require.NoError(t, err)
	d := p.IsAuthorized(request("Bearer " + other))
	assert.False(t, d.IsAuthorized)
	assert.Contains(t, d.ErrorMessage, "invalid token")

	expired, err := IssueToken("signing-key", "editor", -time.Minute)
	require.NoError(t, err)
	assert.False(t, p.IsAuthorized(request("Bearer "+expired)).IsAuthorized)

	assert.False(t, p.IsAuthorized(request("")).IsAuthorized)
}

func TestValidateToken_Subject(t *testing.T) {
	tok, err := IssueToken("k", "alice", time.Minute)
	require.NoError(t, err)
	claims, err := validateToken([]byte("k"), tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}
