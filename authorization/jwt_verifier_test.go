package authorization

import (
	"context"
	stderrors "errors"
	"roommate_service/domain"
	"roommate_service/errors"
	"testing"
	"time"
)

var secret = []byte("test-secret")

func issue(t *testing.T, identity *domain.Identity, ttl time.Duration) string {
	t.Helper()
	signer, err := NewSigner(secret)
	if err != nil {
		t.Fatal(err)
	}
	token, err := signer.Issue(identity, ttl)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestJWTVerifierAcceptsSignedToken(t *testing.T) {
	verifier, err := NewJWTVerifier(secret)
	if err != nil {
		t.Fatal(err)
	}
	token := issue(t, &domain.Identity{Subject: "u1", Email: "a@example.com", Name: "A", UserType: domain.Admin}, time.Hour)

	identity, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if identity.Email != "a@example.com" || identity.Name != "A" || identity.Subject != "u1" || !identity.IsAdmin() {
		t.Errorf("identity = %+v", identity)
	}
}

func TestJWTVerifierUserTypes(t *testing.T) {
	verifier, _ := NewJWTVerifier(secret)
	for _, userType := range []domain.UserType{"", domain.User, "Host", domain.Unauthenticated} {
		token := issue(t, &domain.Identity{Email: "a@example.com", UserType: userType}, time.Hour)
		identity, err := verifier.Verify(context.Background(), token)
		if err != nil {
			t.Fatalf("%q: %v", userType, err)
		}
		if identity.UserType != domain.User {
			t.Errorf("%q mapped to %q, want User", userType, identity.UserType)
		}
	}
}

func TestJWTVerifierRejects(t *testing.T) {
	verifier, _ := NewJWTVerifier(secret)
	otherSigner, _ := NewSigner([]byte("other-secret"))
	foreign, _ := otherSigner.Issue(&domain.Identity{Email: "a@example.com"}, time.Hour)

	tests := map[string]string{
		"garbage":       "not.a.token",
		"wrong secret":  foreign,
		"expired":       issue(t, &domain.Identity{Email: "a@example.com"}, -time.Minute),
		"missing email": issue(t, &domain.Identity{Subject: "u1"}, time.Hour),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := verifier.Verify(context.Background(), token); !stderrors.Is(err, errors.ErrInvalidToken) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestIdentityFromFirebaseClaims(t *testing.T) {
	identity, err := identityFromFirebaseClaims("uid-1", map[string]interface{}{
		"email": "fb@example.com",
		"name":  "Fire Base",
		"admin": true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if identity.Subject != "uid-1" || identity.Name != "Fire Base" || !identity.IsAdmin() {
		t.Errorf("identity = %+v", identity)
	}

	plain, err := identityFromFirebaseClaims("uid-2", map[string]interface{}{"email": "u@example.com"})
	if err != nil || plain.UserType != domain.User {
		t.Errorf("plain = %+v, %v", plain, err)
	}

	if _, err := identityFromFirebaseClaims("uid-3", map[string]interface{}{"phone_number": "+880"}); !stderrors.Is(err, errors.ErrInvalidToken) {
		t.Errorf("err = %v", err)
	}
}
