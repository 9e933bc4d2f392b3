package viewmodel

import (
	"context"
	"roommate_service/client"
	"roommate_service/domain"
)

type Dashboard struct {
	api     ListingAPI
	session *client.Session
	Stats   domain.DashboardStats
}

func NewDashboard(api ListingAPI, session *client.Session) *Dashboard {
	return &Dashboard{api: api, session: session}
}

func (d *Dashboard) Load(ctx context.Context) error {
	stats, err := d.api.Stats(ctx, d.session)
	if err != nil {
		return err
	}
	d.Stats = *stats
	return nil
}

// Summarize counts listings the way the server does: all of them, the
// available ones, and those owned by email.
func Summarize(listings []*domain.Listing, email string) domain.DashboardStats {
	var stats domain.DashboardStats
	for _, listing := range listings {
		stats.Total++
		if listing.Availability {
			stats.Active++
		}
		if email != "" && listing.Email == email {
			stats.Mine++
		}
	}
	return stats
}
