package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) Revoke(_ context.Context, id string, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	if f.revoked == nil {
		f.revoked = map[string]bool{}
	}
	f.revoked[id] = true
	return nil
}

func (f *fakeRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[id], nil
}

func TestIsProtected(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", false},
		{"/products", false},
		{"/api/products", false},
		{"/admin", true},
		{"/admin/", true},
		{"/admin/products", true},
		{"/admin/messages/42/handled", true},
		{"/admin/login", false},
		{"/admin/login/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProtected(tt.path))
		})
	}
}

func TestGuard_Check(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	signer, err := NewSigner([]byte("secret"), week, WithClock(func() time.Time { return clock() }))
	require.NoError(t, err)

	valid, claims, err := signer.Sign("admin-1", "a@example.com")
	require.NoError(t, err)

	other, err := NewSigner([]byte("other"), week)
	require.NoError(t, err)
	foreign, _, err := other.Sign("admin-1", "a@example.com")
	require.NoError(t, err)

	revocations := &fakeRevocations{}
	g := NewGuard(signer, revocations, logging.NewDiscardLogger())
	ctx := context.Background()

	t.Run("public path without token", func(t *testing.T) {
		d := g.Check(ctx, "/products", "")
		assert.True(t, d.Allowed)
		assert.Empty(t, d.RedirectTo)
	})

	t.Run("login page without token", func(t *testing.T) {
		d := g.Check(ctx, "/admin/login", "")
		assert.True(t, d.Allowed)
	})

	t.Run("admin without token", func(t *testing.T) {
		d := g.Check(ctx, "/admin", "")
		assert.False(t, d.Allowed)
		assert.Equal(t, "/admin/login", d.RedirectTo)
		assert.ErrorIs(t, d.Reason, common.ErrorUnauthorized)
	})

	t.Run("valid token", func(t *testing.T) {
		d := g.Check(ctx, "/admin/products", valid)
		require.True(t, d.Allowed)
		assert.Equal(t, "admin-1", d.Claims.AdminID())
		assert.Equal(t, claims.ID, d.Claims.ID)
	})

	t.Run("malformed token", func(t *testing.T) {
		d := g.Check(ctx, "/admin", "garbage")
		assert.False(t, d.Allowed)
		assert.Equal(t, "/admin/login", d.RedirectTo)
		assert.ErrorIs(t, d.Reason, common.ErrInvalidToken)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		d := g.Check(ctx, "/admin", foreign)
		assert.False(t, d.Allowed)
		assert.ErrorIs(t, d.Reason, common.ErrInvalidToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		r := &fakeRevocations{revoked: map[string]bool{claims.ID: true}}
		d := NewGuard(signer, r, logging.NewDiscardLogger()).Check(ctx, "/admin", valid)
		assert.False(t, d.Allowed)
		assert.Equal(t, "/admin/login", d.RedirectTo)
		assert.ErrorIs(t, d.Reason, common.ErrTokenRevoked)
	})

	t.Run("revocation store down", func(t *testing.T) {
		r := &fakeRevocations{err: errors.New("connection refused")}
		d := NewGuard(signer, r, logging.NewDiscardLogger()).Check(ctx, "/admin", valid)
		assert.True(t, d.Allowed)
	})

	t.Run("expired token", func(t *testing.T) {
		clock = func() time.Time { return now.Add(week + time.Second) }
		defer func() { clock = func() time.Time { return now } }()

		d := g.Check(ctx, "/admin", valid)
		assert.False(t, d.Allowed)
		assert.Equal(t, "/admin/login", d.RedirectTo)
		assert.ErrorIs(t, d.Reason, common.ErrTokenExpired)
	})
}

func TestNewGuard_NilRevocationsUsesNop(t *testing.T) {
	signer, err := NewSigner([]byte("secret"), time.Hour)
	require.NoError(t, err)

	tok, _, err := signer.Sign("admin-1", "a@example.com")
	require.NoError(t, err)

	d := NewGuard(signer, nil, logging.NewDiscardLogger()).Check(context.Background(), "/admin", tok)
	assert.True(t, d.Allowed)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{AdminID: "a", Email: "e", TokenID: "j"})
	id, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "a", id.AdminID)
	assert.Equal(t, "j", id.TokenID)
}
