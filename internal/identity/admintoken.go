// Package identity issues and verifies admin session tokens for the registry's
// diagnostic API.
package identity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrBadSecret is returned by Login when the supplied secret does not match.
var ErrBadSecret = errors.New("admin secret does not match")

// AdminClaims are the JWT claims of an admin session token.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AdminTokenIssuer exchanges the configured admin secret for short-lived HS256
// session tokens. The signing key is random per process, so tokens die with
// the process — consistent with the chain itself being volatile.
type AdminTokenIssuer struct {
	secretHash []byte // bcrypt hash of the configured admin secret
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewAdminTokenIssuer creates an issuer guarding logins with adminSecret.
//
//	issuer — the "iss" claim value; matches the registry's base URL.
//	ttl    — token lifetime (default: 1 hour).
func NewAdminTokenIssuer(adminSecret, issuer string, ttl time.Duration) (*AdminTokenIssuer, error) {
	if adminSecret == "" {
		return nil, errors.New("admin secret must not be empty")
	}
	if ttl == 0 {
		ttl = time.Hour
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin secret: %w", err)
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	return &AdminTokenIssuer{
		secretHash: hash,
		signingKey: key,
		issuer:     issuer,
		ttl:        ttl,
	}, nil
}

// Login verifies secret against the configured admin secret and, on match,
// issues a signed session token.
func (a *AdminTokenIssuer) Login(secret string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.secretHash, []byte(secret)); err != nil {
		return "", ErrBadSecret
	}

	now := time.Now().UTC()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			ID:        uuid.New().String(),
		},
		Role: "admin",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (a *AdminTokenIssuer) Verify(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&AdminClaims{},
		func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
			}
			return a.signingKey, nil
		},
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse admin token: %w", err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || claims.Role != "admin" {
		return nil, errors.New("token does not carry the admin role")
	}
	return claims, nil
}
