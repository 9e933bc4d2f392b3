package viewmodel

import (
	"context"
	"roommate_service/client"
	"roommate_service/domain"
	"sort"
	"strings"
)

type ViewMode string

const (
	CardView  ViewMode = "card"
	TableView ViewMode = "table"
)

// Browse filters and sorts the loaded listings locally so typing in the
// search box does not hit the server.
type Browse struct {
	api     ListingAPI
	session *client.Session

	all    []*domain.Listing
	Search string
	Sort   domain.SortOrder
	Mode   ViewMode
}

func NewBrowse(api ListingAPI, session *client.Session) *Browse {
	return &Browse{api: api, session: session, Mode: CardView}
}

func (b *Browse) Load(ctx context.Context) error {
	listings, err := b.api.Browse(ctx, b.session, "", domain.SortNone)
	if err != nil {
		return err
	}
	b.all = listings
	return nil
}

func (b *Browse) ToggleView() ViewMode {
	if b.Mode == TableView {
		b.Mode = CardView
	} else {
		b.Mode = TableView
	}
	return b.Mode
}

// Visible returns the listings matching Search (title, location or owner
// name, case-insensitive) in Sort order. Ties keep the server order.
func (b *Browse) Visible() []*domain.Listing {
	needle := strings.ToLower(strings.TrimSpace(b.Search))
	visible := make([]*domain.Listing, 0, len(b.all))
	for _, listing := range b.all {
		if needle == "" || matches(listing, needle) {
			visible = append(visible, listing)
		}
	}

	switch b.Sort {
	case domain.SortTitleAsc:
		sort.SliceStable(visible, func(i, j int) bool {
			return strings.ToLower(visible[i].Title) < strings.ToLower(visible[j].Title)
		})
	case domain.SortTitleDesc:
		sort.SliceStable(visible, func(i, j int) bool {
			return strings.ToLower(visible[i].Title) > strings.ToLower(visible[j].Title)
		})
	}
	return visible
}

func matches(listing *domain.Listing, needle string) bool {
	return strings.Contains(strings.ToLower(listing.Title), needle) ||
		strings.Contains(strings.ToLower(listing.Location), needle) ||
		strings.Contains(strings.ToLower(listing.UserName), needle)
}
