package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
)

// TokenVerifier is the part of Signer the guard depends on.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// Decision is the outcome of a guard check. Exactly one of Allowed or
// RedirectTo is set. Reason records why a request was redirected; it is
// meant for logs only and is never shown to the client.
type Decision struct {
	Allowed    bool
	RedirectTo string
	Claims     *Claims
	Reason     error
}

func allow(claims *Claims) Decision {
	return Decision{Allowed: true, Claims: claims}
}

func redirectToLogin(reason error) Decision {
	return Decision{RedirectTo: common.LoginPath, Reason: reason}
}

// IsProtected reports whether path needs an admin session: everything under
// /admin except the login page itself.
func IsProtected(path string) bool {
	return strings.HasPrefix(path, common.AdminPathPrefix) && !strings.HasPrefix(path, common.LoginPath)
}

// Guard decides whether a request may reach a protected handler. It holds
// no per-request state and does not touch the HTTP layer; the caller performs
// the redirect.
type Guard struct {
	verifier    TokenVerifier
	revocations RevocationStore
	logger      logging.Logger
}

func NewGuard(v TokenVerifier, revocations RevocationStore, l logging.Logger) *Guard {
	if revocations == nil {
		revocations = NopRevocationStore{}
	}
	return &Guard{
		verifier:    v,
		revocations: revocations,
		logger:      l.With("module", "session_guard"),
	}
}

// Check evaluates the session token presented for path.
//
// Unprotected paths are always allowed. For protected paths a missing token,
// a token failing verification (bad signature, tampered, expired) or a revoked
// token redirects to the login page.
//
// If the revocation store cannot be reached the token is accepted on its
// signature and expiry alone.
func (g *Guard) Check(ctx context.Context, path, token string) Decision {
	if !IsProtected(path) {
		return allow(nil)
	}

	if token == "" {
		return redirectToLogin(common.ErrorUnauthorized)
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		return redirectToLogin(err)
	}

	revoked, err := g.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		g.logger.Warn(ctx, "revocation check failed, trusting token", "error", err, "admin_id", claims.AdminID())
		return allow(claims)
	}
	if revoked {
		return redirectToLogin(common.ErrTokenRevoked)
	}

	return allow(claims)
}
