package domain

import (
	"context"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingStore interface {
	GetAll(ctx context.Context, query ListingQuery) ([]*Listing, error)
	GetByEmail(ctx context.Context, email string) ([]*Listing, error)
	GetAvailable(ctx context.Context, limit int64) ([]*Listing, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Listing, error)
	Insert(ctx context.Context, listing *Listing) (*Listing, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*UpdateResult, error)
	// AddLike returns the listing after the like, or errors.ErrNotFound when
	// no listing matched the like guard.
	AddLike(ctx context.Context, id primitive.ObjectID, email string) (*Listing, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*DeleteResult, error)
	Count(ctx context.Context, filter CountFilter) (int64, error)
}

// CountFilter selects documents for dashboard counts; empty fields do not filter.
type CountFilter struct {
	AvailableOnly bool
	Email         string
}

// ListingCache holds the featured section. Every Invalidate advances the
// generation; PostAvailable stores the listings only if the generation read
// before the store query is still current.
type ListingCache interface {
	GetAvailable(ctx context.Context) ([]*Listing, error)
	Generation(ctx context.Context) (int64, error)
	PostAvailable(ctx context.Context, generation int64, listings []*Listing) error
	Invalidate(ctx context.Context) error
}

type LikeNotifier interface {
	NotifyLike(ctx context.Context, listing *Listing, voter *Identity) error
}
