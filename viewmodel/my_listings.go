package viewmodel

import (
	"context"
	"roommate_service/client"
	"roommate_service/domain"
)

type MyListings struct {
	api      ListingAPI
	session  *client.Session
	Listings []*domain.Listing
}

func NewMyListings(api ListingAPI, session *client.Session) *MyListings {
	return &MyListings{api: api, session: session, Listings: []*domain.Listing{}}
}

func (m *MyListings) Load(ctx context.Context) error {
	if !m.session.SignedIn() {
		return client.ErrNoSession
	}
	listings, err := m.api.ListingsByEmail(ctx, m.session, m.session.Email)
	if err != nil {
		return err
	}
	m.Listings = listings
	return nil
}

// Delete removes the listing from the local list only once the server
// reports it deleted. On error the list is unchanged.
func (m *MyListings) Delete(ctx context.Context, id string) (*domain.DeleteResult, error) {
	result, err := m.api.Delete(ctx, m.session, id)
	if err != nil {
		return nil, err
	}
	if result.DeletedCount > 0 {
		m.remove(id)
	}
	return result, nil
}

func (m *MyListings) remove(id string) {
	kept := m.Listings[:0]
	for _, listing := range m.Listings {
		if listing.ID.Hex() != id {
			kept = append(kept, listing)
		}
	}
	m.Listings = kept
}
