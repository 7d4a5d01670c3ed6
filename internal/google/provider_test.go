package google

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthCodeURL(t *testing.T) {
	p := NewProvider(context.Background(), "client-id.apps.googleusercontent.com", "secret", "http://localhost:8000/auth/google/callback")

	u, err := url.Parse(p.AuthCodeURL("state-123"))
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-id.apps.googleusercontent.com", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:8000/auth/google/callback", q.Get("redirect_uri"))
	assert.Equal(t, "select_account", q.Get("prompt"))

	scopes := strings.Fields(q.Get("scope"))
	assert.ElementsMatch(t, []string{"openid", "profile", "email"}, scopes)
	assert.NotContains(t, u.String(), "secret")
}
