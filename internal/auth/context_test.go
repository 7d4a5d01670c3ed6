package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	claims := &Claims{UserID: "user-7", Email: "a@b.c", Role: RoleAdmin}
	ctx := ContextWithClaims(context.Background(), claims)

	got, ok := ClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, claims, got)

	ctx = ContextWithClaims(context.Background(), nil)
	_, ok = ClaimsFromContext(ctx)
	assert.False(t, ok)
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleOrdinary, RoleInternal, RoleAdmin} {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("admin").Valid())
}
