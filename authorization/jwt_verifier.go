package authorization

import (
	"context"
	"fmt"
	"github.com/cristalhq/jwt/v4"
	"roommate_service/domain"
	"roommate_service/errors"
	"time"
)

type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"userType,omitempty"`
}

// JWTVerifier checks HS256 tokens signed with the service secret.
type JWTVerifier struct {
	verifier jwt.Verifier
	now      func() time.Time
}

func NewJWTVerifier(secret []byte) (*JWTVerifier, error) {
	verifier, err := jwt.NewVerifierHS(jwt.HS256, secret)
	if err != nil {
		return nil, fmt.Errorf("jwt verifier: %w", err)
	}
	return &JWTVerifier{verifier: verifier, now: time.Now}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*domain.Identity, error) {
	var claims Claims
	if err := jwt.ParseClaims([]byte(token), v.verifier, &claims); err != nil {
		return nil, errors.ErrInvalidToken
	}
	if !claims.IsValidAt(v.now()) || claims.Email == "" {
		return nil, errors.ErrInvalidToken
	}

	userType := domain.UserType(claims.UserType)
	if userType != domain.Admin {
		userType = domain.User
	}
	return &domain.Identity{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		UserType: userType,
	}, nil
}

// Signer issues tokens the JWTVerifier accepts; used by tooling and tests.
type Signer struct {
	builder *jwt.Builder
}

func NewSigner(secret []byte) (*Signer, error) {
	signer, err := jwt.NewSignerHS(jwt.HS256, secret)
	if err != nil {
		return nil, fmt.Errorf("jwt signer: %w", err)
	}
	return &Signer{builder: jwt.NewBuilder(signer)}, nil
}

func (s *Signer) Issue(identity *domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:    identity.Email,
		Name:     identity.Name,
		UserType: string(identity.UserType),
	}
	token, err := s.builder.Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}
