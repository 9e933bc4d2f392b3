package store

import (
	"context"
	stderrors "errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
	"roommate_service/domain"
	"roommate_service/errors"
	"testing"
	"time"
)

func newTestCache(t *testing.T) (*ListingRedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewListingRedisCache(client, 10*time.Minute, trace.NewNoopTracerProvider().Tracer(""), testLogger()), mr
}

func TestListingRedisCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if _, err := cache.GetAvailable(ctx); !stderrors.Is(err, ErrCacheMiss) {
		t.Fatalf("empty cache err = %v", err)
	}

	id := primitive.NewObjectID()
	listings := []*domain.Listing{{ID: id, Title: "Room", Availability: true, Likes: 3, LikedBy: []string{"a@example.com"}}}
	if err := cache.PostAvailable(ctx, 0, listings); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(cacheAvailable); ttl != 10*time.Minute {
		t.Errorf("ttl = %v", ttl)
	}

	cached, err := cache.GetAvailable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 1 || cached[0].ID != id || cached[0].Likes != 3 {
		t.Errorf("cached = %+v", cached)
	}
}

func TestListingRedisCacheExpiresAndInvalidates(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if err := cache.PostAvailable(ctx, 0, []*domain.Listing{{Title: "Room"}}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(11 * time.Minute)
	if _, err := cache.GetAvailable(ctx); !stderrors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry err = %v", err)
	}

	if err := cache.PostAvailable(ctx, 0, []*domain.Listing{{Title: "Room"}}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(cacheAvailable) {
		t.Error("invalidate left the key")
	}
}

func TestListingRedisCacheSkipsStaleFill(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	generation, err := cache.Generation(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}

	err = cache.PostAvailable(ctx, generation, []*domain.Listing{{Title: "Room", Availability: true}})
	if !stderrors.Is(err, errors.ErrStaleCache) {
		t.Fatalf("err = %v, want stale cache", err)
	}
	if mr.Exists(cacheAvailable) {
		t.Error("stale listings were cached")
	}

	current, err := cache.Generation(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if current != generation+1 {
		t.Errorf("generation = %d, want %d", current, generation+1)
	}
	if err := cache.PostAvailable(ctx, current, []*domain.Listing{{Title: "Room"}}); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(cacheAvailable) {
		t.Error("current generation was not cached")
	}
}

func TestListingRedisCacheUnreachable(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	if err := cache.Ping(); err == nil {
		t.Error("expected ping error")
	}
	if _, err := cache.GetAvailable(context.Background()); err == nil || stderrors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want connection error", err)
	}
}

func TestNopListingCache(t *testing.T) {
	var cache domain.ListingCache = NopListingCache{}
	if _, err := cache.GetAvailable(context.Background()); !stderrors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v", err)
	}
	if err := cache.PostAvailable(context.Background(), 0, nil); err != nil {
		t.Error(err)
	}
	if err := cache.Invalidate(context.Background()); err != nil {
		t.Error(err)
	}
}
