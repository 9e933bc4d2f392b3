// Package viewmodel holds the page state of the listing front end: browse
// filtering, the owner's listings, the details page like flow and the dashboard.
package viewmodel

import (
	"context"
	"roommate_service/client"
	"roommate_service/domain"
)

// ListingAPI is the part of client.Client the view models use.
type ListingAPI interface {
	Browse(ctx context.Context, session *client.Session, search string, sort domain.SortOrder) ([]*domain.Listing, error)
	ListingsByEmail(ctx context.Context, session *client.Session, email string) ([]*domain.Listing, error)
	Details(ctx context.Context, session *client.Session, id string) (*domain.Listing, error)
	Stats(ctx context.Context, session *client.Session) (*domain.DashboardStats, error)
	Like(ctx context.Context, session *client.Session, id string) (*domain.LikeResult, error)
	Delete(ctx context.Context, session *client.Session, id string) (*domain.DeleteResult, error)
}

var _ ListingAPI = (*client.Client)(nil)
