// Package services contains server-side business logic. This file implements
// AuthService, which verifies admin credentials, issues the session cookie
// and seeds the admin account.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/auth"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/soncatalog/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost used for admin passwords.
const PasswordHashCost = 10

const minPasswordLength = 6

// dummyHash is compared against when the email is unknown so that a failed
// lookup costs the same as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	pw, err := shared.MakeRandHexString(16)
	if err != nil {
		pw = "son-dummy-password"
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordHashCost)
	if err != nil {
		panic(err)
	}
	return h
})

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	signer      *auth.Signer
	revocations auth.RevocationStore
	cache       *cache.Coordinator
	logger      logging.Logger
	now         func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, signer *auth.Signer,
	revocations auth.RevocationStore, c *cache.Coordinator, l logging.Logger) *AuthService {
	if revocations == nil {
		revocations = auth.NopRevocationStore{}
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		signer:      signer,
		revocations: revocations,
		cache:       c,
		logger:      l.With("module", "auth_service"),
		now:         time.Now,
	}
}

// Login checks email and password and, on success, writes the session cookie
// to jar. Unknown emails and wrong passwords both yield
// common.ErrorInvalidCredentials; no cookie is written on failure.
func (s *AuthService) Login(ctx context.Context, jar auth.CookieJar, email, password string) (*models.Admin, error) {
	if email == "" || password == "" {
		return nil, common.ErrorInvalidCredentials
	}

	repo := s.repomanager.Admins(s.db)
	admin, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			s.logger.Info(ctx, "login failed", "reason", "unknown email")
			return nil, common.ErrorInvalidCredentials
		}
		s.logger.Error(ctx, "admin lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Info(ctx, "login failed", "reason", "wrong password", "admin_id", admin.ID)
		return nil, common.ErrorInvalidCredentials
	}

	token, _, err := s.signer.Sign(admin.ID, admin.Email)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return nil, common.ErrorInternal
	}

	jar.SetSessionCookie(token, s.signer.Validity())
	s.logger.Info(ctx, "admin logged in", "admin_id", admin.ID)

	return admin, nil
}

// Logout clears the session cookie and revokes token until it would have
// expired. Revocation is best effort; the cookie is always cleared.
func (s *AuthService) Logout(ctx context.Context, jar auth.CookieJar, token string) {
	jar.ClearSessionCookie()

	if token == "" {
		return
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return
	}

	remaining := claims.ExpiresAt.Sub(s.now())
	if err := s.revocations.Revoke(ctx, claims.ID, remaining); err != nil {
		s.logger.Warn(ctx, "token revocation failed", "admin_id", claims.AdminID(), "error", err)
		return
	}
	s.logger.Info(ctx, "admin logged out", "admin_id", claims.AdminID())
}

// SeedAdmin creates the admin account or resets its password.
func (s *AuthService) SeedAdmin(ctx context.Context, email string, password []byte) (*models.Admin, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", common.ErrorValidation, email)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword(password, PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin, err := s.repomanager.Admins(s.db).Upsert(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, cache.TagAdmin); err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", "error", err)
	}
	return admin, nil
}
