// Package storetest provides an in-memory domain.ListingStore that follows
// the MongoDB store's semantics, for tests of the layers above it.
package storetest

import (
	"context"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"roommate_service/domain"
	"roommate_service/errors"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu       sync.Mutex
	listings map[primitive.ObjectID]*domain.Listing
	order    []primitive.ObjectID

	// Err, when set, is returned by every read and write.
	Err error
}

func NewMemoryStore(listings ...*domain.Listing) *MemoryStore {
	s := &MemoryStore{listings: map[primitive.ObjectID]*domain.Listing{}}
	for _, l := range listings {
		if l.ID.IsZero() {
			l.ID = primitive.NewObjectID()
		}
		if l.LikedBy == nil {
			l.LikedBy = []string{}
		}
		s.listings[l.ID] = copyListing(l)
		s.order = append(s.order, l.ID)
	}
	return s
}

func copyListing(l *domain.Listing) *domain.Listing {
	c := *l
	c.LikedBy = append([]string{}, l.LikedBy...)
	return &c
}

func (s *MemoryStore) snapshot() []*domain.Listing {
	out := []*domain.Listing{}
	for _, id := range s.order {
		if l, ok := s.listings[id]; ok {
			out = append(out, copyListing(l))
		}
	}
	return out
}

func (s *MemoryStore) GetAll(_ context.Context, query domain.ListingQuery) ([]*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	needle := strings.ToLower(query.Search)
	out := []*domain.Listing{}
	for _, l := range s.snapshot() {
		if needle == "" ||
			strings.Contains(strings.ToLower(l.Title), needle) ||
			strings.Contains(strings.ToLower(l.Location), needle) ||
			strings.Contains(strings.ToLower(l.UserName), needle) {
			out = append(out, l)
		}
	}
	switch query.Sort {
	case domain.SortTitleAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	case domain.SortTitleDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title > out[j].Title })
	}
	return out, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) ([]*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := []*domain.Listing{}
	for _, l := range s.snapshot() {
		if l.Email == email {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetAvailable(_ context.Context, limit int64) ([]*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := []*domain.Listing{}
	for _, l := range s.snapshot() {
		if l.Availability {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	l, ok := s.listings[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return copyListing(l), nil
}

func (s *MemoryStore) Insert(_ context.Context, listing *domain.Listing) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	listing.ID = primitive.NewObjectID()
	s.listings[listing.ID] = copyListing(listing)
	s.order = append(s.order, listing.ID)
	return listing, nil
}

func (s *MemoryStore) Update(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*domain.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	l, ok := s.listings[id]
	if !ok {
		return &domain.UpdateResult{Acknowledged: true}, nil
	}
	for key, value := range fields {
		applyField(l, key, value)
	}
	return &domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func applyField(l *domain.Listing, key string, value interface{}) {
	switch key {
	case "title":
		l.Title = value.(string)
	case "location":
		l.Location = value.(string)
	case "description":
		l.Description = value.(string)
	case "rentAmount":
		l.RentAmount = value.(float64)
	case "roomType":
		l.RoomType = value.(domain.RoomType)
	case "contactInfo":
		l.ContactInfo = value.(string)
	case "availability":
		l.Availability = value.(bool)
	case "imageUrl":
		l.ImageURL = value.(string)
	case "lifestyle.pets":
		l.Lifestyle.Pets = value.(bool)
	case "lifestyle.smoking":
		l.Lifestyle.Smoking = value.(bool)
	case "lifestyle.nightOwl":
		l.Lifestyle.NightOwl = value.(bool)
	case "lifestyle.earlyBird":
		l.Lifestyle.EarlyBird = value.(bool)
	case "lifestyle.drinking":
		l.Lifestyle.Drinking = value.(bool)
	case "lifestyle.visitors":
		l.Lifestyle.Visitors = value.(bool)
	}
}

// AddLike applies the same guard as the MongoDB store: the owner and existing
// voters do not match.
func (s *MemoryStore) AddLike(_ context.Context, id primitive.ObjectID, email string) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	l, ok := s.listings[id]
	if !ok || l.Email == email || l.LikedByUser(email) {
		return nil, errors.ErrNotFound
	}
	l.Likes++
	l.LikedBy = append(l.LikedBy, email)
	return copyListing(l), nil
}

func (s *MemoryStore) Delete(_ context.Context, id primitive.ObjectID) (*domain.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	if _, ok := s.listings[id]; !ok {
		return &domain.DeleteResult{Acknowledged: true}, nil
	}
	delete(s.listings, id)
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (s *MemoryStore) Count(_ context.Context, filter domain.CountFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}

	var n int64
	for _, l := range s.snapshot() {
		if filter.AvailableOnly && !l.Availability {
			continue
		}
		if filter.Email != "" && l.Email != filter.Email {
			continue
		}
		n++
	}
	return n, nil
}

var _ domain.ListingStore = (*MemoryStore)(nil)
