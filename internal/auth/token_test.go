package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)

	principal := Principal{
		ID:    7,
		Name:  "Ana",
		Email: "ana@example.com",
		Image: "https://cdn.example.com/ana.png",
		Role:  domain.RoleAdmin,
	}

	token, err := manager.Issue(principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, principal, *got)
}

func TestTokenManager_Tampered(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)

	token, err := manager.Issue(Principal{ID: 1, Name: "a", Email: "a@b.c", Role: domain.RoleUser})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = manager.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	manager := NewTokenManager("secret", -time.Minute)

	token, err := manager.Issue(Principal{ID: 1, Name: "a", Email: "a@b.c", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(Principal{ID: 1, Name: "a", Email: "a@b.c", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecisions(t *testing.T) {
	admin := &Principal{ID: 1, Role: domain.RoleAdmin}
	user := &Principal{ID: 2, Role: domain.RoleUser}

	assert.False(t, Authenticated(nil).Allowed)
	assert.Equal(t, DenyUnauthenticated, Authenticated(nil).Reason)
	assert.True(t, Authenticated(user).Allowed)

	assert.True(t, RequireRole(admin, domain.RoleAdmin).Allowed)
	denied := RequireRole(user, domain.RoleAdmin)
	assert.False(t, denied.Allowed)
	assert.Equal(t, DenyForbidden, denied.Reason)
	assert.Equal(t, DenyUnauthenticated, RequireRole(nil, domain.RoleAdmin).Reason)

	assert.True(t, RequireOwner(user, 2).Allowed)
	assert.False(t, RequireOwner(user, 1).Allowed)
	// admins may act on resources they do not own
	assert.True(t, RequireOwner(admin, 2).Allowed)
}
