package authorization

import (
	"context"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"fmt"
	"google.golang.org/api/option"
	"roommate_service/domain"
	"roommate_service/errors"
)

// FirebaseVerifier accepts ID tokens issued by Firebase Authentication, the
// provider the web front end signs users in with.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	return identityFromFirebaseClaims(decoded.UID, decoded.Claims)
}

func identityFromFirebaseClaims(uid string, claims map[string]interface{}) (*domain.Identity, error) {
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, errors.ErrInvalidToken
	}
	name, _ := claims["name"].(string)

	userType := domain.User
	if isAdmin, _ := claims["admin"].(bool); isAdmin {
		userType = domain.Admin
	}
	return &domain.Identity{
		Subject:  uid,
		Email:    email,
		Name:     name,
		UserType: userType,
	}, nil
}
