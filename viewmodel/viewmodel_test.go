package viewmodel

import (
	"context"
	stderrors "errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"roommate_service/client"
	"roommate_service/domain"
	"testing"
)

type fakeAPI struct {
	listings    []*domain.Listing
	stats       *domain.DashboardStats
	likeResult  *domain.LikeResult
	deleteCount int64
	err         error
	likeCalls   int
	deleteCalls int
}

func (f *fakeAPI) Browse(context.Context, *client.Session, string, domain.SortOrder) ([]*domain.Listing, error) {
	return f.listings, f.err
}

func (f *fakeAPI) ListingsByEmail(_ context.Context, _ *client.Session, email string) ([]*domain.Listing, error) {
	out := []*domain.Listing{}
	for _, l := range f.listings {
		if l.Email == email {
			out = append(out, l)
		}
	}
	return out, f.err
}

func (f *fakeAPI) Details(_ context.Context, _ *client.Session, id string) (*domain.Listing, error) {
	for _, l := range f.listings {
		if l.ID.Hex() == id {
			return l, nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "listing not found"}
}

func (f *fakeAPI) Stats(context.Context, *client.Session) (*domain.DashboardStats, error) {
	return f.stats, f.err
}

func (f *fakeAPI) Like(context.Context, *client.Session, string) (*domain.LikeResult, error) {
	f.likeCalls++
	return f.likeResult, f.err
}

func (f *fakeAPI) Delete(context.Context, *client.Session, string) (*domain.DeleteResult, error) {
	f.deleteCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: f.deleteCount}, nil
}

var me = &client.Session{Token: "tok", Email: "me@example.com", DisplayName: "Me"}

func sample() []*domain.Listing {
	return []*domain.Listing{
		{ID: primitive.NewObjectID(), Title: "beta flat", Location: "Dhaka", UserName: "Rahim", Email: "me@example.com", Availability: true},
		{ID: primitive.NewObjectID(), Title: "Alpha room", Location: "Sylhet", UserName: "Karim", Email: "other@example.com", Availability: true},
		{ID: primitive.NewObjectID(), Title: "Gamma studio", Location: "Khulna", UserName: "me", Email: "me@example.com"},
	}
}

func TestBrowseFilterAndSort(t *testing.T) {
	b := NewBrowse(&fakeAPI{listings: sample()}, nil)
	if err := b.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	b.Sort = domain.SortTitleAsc
	titles := func() []string {
		var out []string
		for _, l := range b.Visible() {
			out = append(out, l.Title)
		}
		return out
	}
	if got := titles(); len(got) != 3 || got[0] != "Alpha room" || got[2] != "Gamma studio" {
		t.Errorf("asc = %v", got)
	}

	b.Sort = domain.SortTitleDesc
	if got := titles(); got[0] != "Gamma studio" {
		t.Errorf("desc = %v", got)
	}

	b.Search = "SYL"
	if got := titles(); len(got) != 1 || got[0] != "Alpha room" {
		t.Errorf("location search = %v", got)
	}

	b.Search = "rahim"
	if got := titles(); len(got) != 1 || got[0] != "beta flat" {
		t.Errorf("owner search = %v", got)
	}
}

func TestBrowseToggleView(t *testing.T) {
	b := NewBrowse(&fakeAPI{}, nil)
	if b.Mode != CardView {
		t.Fatalf("default mode = %q", b.Mode)
	}
	if b.ToggleView() != TableView || b.ToggleView() != CardView {
		t.Error("toggle does not alternate")
	}
}

func TestMyListingsDelete(t *testing.T) {
	api := &fakeAPI{listings: sample(), deleteCount: 1}
	m := NewMyListings(api, me)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(m.Listings) != 2 {
		t.Fatalf("loaded %d listings", len(m.Listings))
	}

	target := m.Listings[0].ID.Hex()
	if _, err := m.Delete(context.Background(), target); err != nil {
		t.Fatal(err)
	}
	if len(m.Listings) != 1 || m.Listings[0].ID.Hex() == target {
		t.Errorf("listings after delete = %v", m.Listings)
	}
}

func TestMyListingsKeepsEntryWhenServerRefuses(t *testing.T) {
	api := &fakeAPI{listings: sample(), deleteCount: 1}
	m := NewMyListings(api, me)
	_ = m.Load(context.Background())

	api.err = &client.APIError{Status: 403, Message: "forbidden"}
	if _, err := m.Delete(context.Background(), m.Listings[0].ID.Hex()); err == nil {
		t.Fatal("expected error")
	}
	if len(m.Listings) != 2 {
		t.Errorf("listing removed despite error")
	}

	api.err = nil
	api.deleteCount = 0
	if _, err := m.Delete(context.Background(), m.Listings[0].ID.Hex()); err != nil {
		t.Fatal(err)
	}
	if len(m.Listings) != 2 {
		t.Errorf("listing removed although nothing was deleted")
	}
}

func TestMyListingsNeedsSession(t *testing.T) {
	if err := NewMyListings(&fakeAPI{}, nil).Load(context.Background()); !stderrors.Is(err, client.ErrNoSession) {
		t.Errorf("err = %v", err)
	}
}

func TestDetailsSelfLikeShortCircuits(t *testing.T) {
	listings := sample()
	api := &fakeAPI{listings: listings}
	d := NewDetails(api, me)
	if err := d.Load(context.Background(), listings[0].ID.Hex()); err != nil {
		t.Fatal(err)
	}

	result, err := d.Like(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Success || d.Message != "Cannot like your own post" {
		t.Errorf("result = %+v message = %q", result, d.Message)
	}
	if api.likeCalls != 0 {
		t.Errorf("server called %d times", api.likeCalls)
	}
}

func TestDetailsLikeRevealsContact(t *testing.T) {
	listings := sample()
	listings[1].Likes = 3
	api := &fakeAPI{listings: listings, likeResult: &domain.LikeResult{
		Success: true, Message: "Like added successfully", ModifiedCount: 1, ContactInfo: "01800000000",
	}}
	d := NewDetails(api, me)
	_ = d.Load(context.Background(), listings[1].ID.Hex())
	if d.ContactVisible() {
		t.Fatal("contact visible before like")
	}

	if _, err := d.Like(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d.Listing.Likes != 4 || !d.Listing.LikedByUser(me.Email) {
		t.Errorf("listing = %+v", d.Listing)
	}
	if !d.ContactVisible() || d.Listing.ContactInfo != "01800000000" {
		t.Error("contact not revealed")
	}
}

func TestDetailsLikeFailureKeepsCounter(t *testing.T) {
	listings := sample()
	api := &fakeAPI{listings: listings, likeResult: &domain.LikeResult{Success: false, Message: "Failed to like"}}
	d := NewDetails(api, me)
	_ = d.Load(context.Background(), listings[1].ID.Hex())

	if _, err := d.Like(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d.Listing.Likes != 0 || d.Message != "Failed to like" {
		t.Errorf("likes = %d message = %q", d.Listing.Likes, d.Message)
	}
}

func TestDetailsLikeRequiresSession(t *testing.T) {
	d := NewDetails(&fakeAPI{}, nil)
	if _, err := d.Like(context.Background()); !stderrors.Is(err, client.ErrNoSession) {
		t.Errorf("err = %v", err)
	}
	d = NewDetails(&fakeAPI{}, me)
	if _, err := d.Like(context.Background()); !stderrors.Is(err, ErrNotLoaded) {
		t.Errorf("err = %v", err)
	}
}

func TestDashboard(t *testing.T) {
	api := &fakeAPI{stats: &domain.DashboardStats{Total: 3, Active: 2, Mine: 2}}
	d := NewDashboard(api, me)
	if err := d.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	local := Summarize(sample(), me.Email)
	if local != d.Stats {
		t.Errorf("local %+v != server %+v", local, d.Stats)
	}
	if anonymous := Summarize(sample(), ""); anonymous.Mine != 0 || anonymous.Total != 3 {
		t.Errorf("anonymous = %+v", anonymous)
	}
}
