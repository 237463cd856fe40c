// Package auth implements admin sessions: HS256 session tokens, the
// son_admin cookie that carries them, the guard protecting /admin routes and
// the revocation list consulted after logout.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the session token payload: the standard registered claims
// (sub = admin id, exp, iat, jti) plus the admin's email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// AdminID returns the admin identifier carried in the subject claim.
func (c *Claims) AdminID() string {
	return c.Subject
}

// Signer signs and verifies session tokens with a process-wide HMAC secret.
// It is created once at startup and is safe for concurrent use.
type Signer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// SignerOption customizes a Signer.
type SignerOption func(*Signer)

// WithClock replaces time.Now, e.g. to move past the token expiry in tests.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

func NewSigner(secret []byte, validity time.Duration, opts ...SignerOption) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	if validity <= 0 {
		return nil, errors.New("auth: token validity must be positive")
	}

	s := &Signer{
		secret:   secret,
		validity: validity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Validity is the fixed token lifetime; the session cookie uses the same max-age.
func (s *Signer) Validity() time.Duration {
	return s.validity
}

// Sign mints a token for the admin. The expiry is fixed at issue time plus
// the validity; tokens are never renewed.
func (s *Signer) Sign(adminID, email string) (string, *Claims, error) {
	issuedAt := s.now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.validity)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

// Verify checks the signature, algorithm and expiry of tokenString.
//
// Expired tokens yield common.ErrTokenExpired; every other failure
// (malformed, tampered, wrong secret, other algorithm) wraps
// common.ErrInvalidToken.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
