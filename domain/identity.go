package domain

import "context"

type UserType string

const (
	Unauthenticated UserType = "Unauthenticated"
	User            UserType = "User"
	Admin           UserType = "Admin"
)

// Identity is the caller as established by a verified token.
type Identity struct {
	Subject  string   `json:"sub"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	UserType UserType `json:"userType"`
}

// Role is the casbin subject for the identity; a nil identity is Unauthenticated.
func (i *Identity) Role() string {
	if i == nil || i.UserType == "" {
		return string(Unauthenticated)
	}
	return string(i.UserType)
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.UserType == Admin
}

type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
