package auth

import "context"

type ctxKey string

const identityKey ctxKey = "admin_identity"

// Identity is the verified admin attached to requests that passed the guard.
type Identity struct {
	AdminID string
	Email   string
	TokenID string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
