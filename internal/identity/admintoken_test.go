package identity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/star-registry/starchain/internal/identity"
)

func TestLogin_issueAndVerify(t *testing.T) {
	issuer, err := identity.NewAdminTokenIssuer("s3cret", "http://localhost:8000", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	token, err := issuer.Login("s3cret")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != "admin" {
		t.Errorf("expected admin role, got %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("token must carry a jti")
	}
}

func TestLogin_wrongSecret(t *testing.T) {
	issuer, err := identity.NewAdminTokenIssuer("s3cret", "http://localhost:8000", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := issuer.Login("wrong"); !errors.Is(err, identity.ErrBadSecret) {
		t.Errorf("expected ErrBadSecret, got %v", err)
	}
}

func TestVerify_foreignToken(t *testing.T) {
	a, _ := identity.NewAdminTokenIssuer("s3cret", "http://localhost:8000", time.Hour)
	b, _ := identity.NewAdminTokenIssuer("s3cret", "http://localhost:8000", time.Hour)

	// Signing keys are per-process-random, so a token from one issuer must not
	// verify against another.
	token, err := a.Login("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Error("token signed by a different issuer must not verify")
	}
}

func TestNewAdminTokenIssuer_emptySecret(t *testing.T) {
	if _, err := identity.NewAdminTokenIssuer("", "iss", time.Hour); err == nil {
		t.Error("empty admin secret must be rejected")
	}
}
