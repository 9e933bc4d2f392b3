package application

import (
	"context"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"io"
	"roommate_service/domain"
	"roommate_service/errors"
	"roommate_service/store"
	"roommate_service/store/storetest"
	"sync"
)

func newFakeStore(listings ...*domain.Listing) *storetest.MemoryStore {
	return storetest.NewMemoryStore(listings...)
}

type fakeCache struct {
	mu          sync.Mutex
	listings    []*domain.Listing
	generation  int64
	posts       int
	invalidated int
}

func (c *fakeCache) GetAvailable(context.Context) ([]*domain.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listings == nil {
		return nil, store.ErrCacheMiss
	}
	return c.listings, nil
}

func (c *fakeCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

func (c *fakeCache) PostAvailable(_ context.Context, generation int64, listings []*domain.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return errors.ErrStaleCache
	}
	c.listings = listings
	c.posts++
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = nil
	c.generation++
	c.invalidated++
	return nil
}

// interleavingStore runs between, once, after the featured query has read
// the collection.
type interleavingStore struct {
	*storetest.MemoryStore
	between func()
}

func (s *interleavingStore) GetAvailable(ctx context.Context, limit int64) ([]*domain.Listing, error) {
	listings, err := s.MemoryStore.GetAvailable(ctx, limit)
	if s.between != nil {
		between := s.between
		s.between = nil
		between()
	}
	return listings, err
}

// concurrentLikeStore records a like from other just before the next AddLike.
type concurrentLikeStore struct {
	*storetest.MemoryStore
	other string
}

func (s *concurrentLikeStore) AddLike(ctx context.Context, id primitive.ObjectID, email string) (*domain.Listing, error) {
	if s.other != "" {
		other := s.other
		s.other = ""
		if _, err := s.MemoryStore.AddLike(ctx, id, other); err != nil {
			return nil, err
		}
	}
	return s.MemoryStore.AddLike(ctx, id, email)
}

type fakeNotifier struct {
	sent chan string
}

func (n *fakeNotifier) NotifyLike(_ context.Context, listing *domain.Listing, voter *domain.Identity) error {
	n.sent <- listing.Email + "<-" + voter.Email
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
