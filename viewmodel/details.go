package viewmodel

import (
	"context"
	stderrors "errors"
	"roommate_service/client"
	"roommate_service/domain"
	"roommate_service/errors"
)

var ErrNotLoaded = stderrors.New("listing not loaded")

type Details struct {
	api     ListingAPI
	session *client.Session

	Listing *domain.Listing
	Message string
}

func NewDetails(api ListingAPI, session *client.Session) *Details {
	return &Details{api: api, session: session}
}

func (d *Details) Load(ctx context.Context, id string) error {
	listing, err := d.api.Details(ctx, d.session, id)
	if err != nil {
		return err
	}
	d.Listing = listing
	d.Message = ""
	return nil
}

// ContactVisible reports whether the contact number can be shown.
func (d *Details) ContactVisible() bool {
	return d.Listing != nil && d.Listing.ContactInfo != ""
}

// Like asks the server to record a like. Liking one's own listing is refused
// locally without a request.
func (d *Details) Like(ctx context.Context) (*domain.LikeResult, error) {
	if !d.session.SignedIn() {
		return nil, client.ErrNoSession
	}
	if d.Listing == nil {
		return nil, ErrNotLoaded
	}
	if d.Listing.Email == d.session.Email {
		d.Message = errors.OwnLikeError
		return &domain.LikeResult{Success: false, Message: errors.OwnLikeError}, nil
	}

	result, err := d.api.Like(ctx, d.session, d.Listing.ID.Hex())
	if err != nil {
		return nil, err
	}
	d.Message = result.Message

	if result.Success {
		d.Listing.Likes++
		d.Listing.LikedBy = append(d.Listing.LikedBy, d.session.Email)
	}
	if result.ContactInfo != "" {
		d.Listing.ContactInfo = result.ContactInfo
	}
	return result, nil
}
