package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"roommate_service/domain"
	"roommate_service/errors"
	"time"
)

const (
	cacheAvailable  = "listings:available"
	cacheGeneration = "listings:available:generation"
)

// ErrCacheMiss is returned when the featured section is not cached.
var ErrCacheMiss = stderrors.New("cache miss")

type ListingRedisCache struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewListingRedisCache(client *redis.Client, ttl time.Duration, tracer trace.Tracer, logger *logrus.Logger) *ListingRedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ListingRedisCache{
		client: client,
		ttl:    ttl,
		tracer: tracer,
		logger: logger,
	}
}

// Ping checks the connection.
func (c *ListingRedisCache) Ping() error {
	return c.client.Ping().Err()
}

func (c *ListingRedisCache) GetAvailable(ctx context.Context) ([]*domain.Listing, error) {
	_, span := c.tracer.Start(ctx, "ListingRedisCache.GetAvailable")
	defer span.End()

	value, err := c.client.Get(cacheAvailable).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithError(err).Warn("redis get featured listings")
		return nil, err
	}

	var listings []*domain.Listing
	if err := json.Unmarshal(value, &listings); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.logger.Debug("cache hit - featured listings")
	return listings, nil
}

func (c *ListingRedisCache) Generation(ctx context.Context) (int64, error) {
	_, span := c.tracer.Start(ctx, "ListingRedisCache.Generation")
	defer span.End()

	generation, err := c.client.Get(cacheGeneration).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return generation, nil
}

// PostAvailable stores the featured section unless an Invalidate ran after
// the generation was read, in which case it returns errors.ErrStaleCache.
func (c *ListingRedisCache) PostAvailable(ctx context.Context, generation int64, listings []*domain.Listing) error {
	_, span := c.tracer.Start(ctx, "ListingRedisCache.PostAvailable")
	defer span.End()

	value, err := json.Marshal(listings)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = c.client.Watch(func(tx *redis.Tx) error {
		current, err := tx.Get(cacheGeneration).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != generation {
			return errors.ErrStaleCache
		}
		_, err = tx.Pipelined(func(pipe redis.Pipeliner) error {
			pipe.Set(cacheAvailable, value, c.ttl)
			return nil
		})
		return err
	}, cacheGeneration)
	if err == redis.TxFailedErr {
		err = errors.ErrStaleCache
	}
	if err != nil && err != errors.ErrStaleCache {
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithError(err).Warn("redis set featured listings")
	}
	return err
}

func (c *ListingRedisCache) Invalidate(ctx context.Context) error {
	_, span := c.tracer.Start(ctx, "ListingRedisCache.Invalidate")
	defer span.End()

	_, err := c.client.TxPipelined(func(pipe redis.Pipeliner) error {
		pipe.Incr(cacheGeneration)
		pipe.Del(cacheAvailable)
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.WithError(err).Warn("redis invalidate featured listings")
		return err
	}
	return nil
}

// NopListingCache is used when no cache host is configured.
type NopListingCache struct{}

func (NopListingCache) GetAvailable(context.Context) ([]*domain.Listing, error) {
	return nil, ErrCacheMiss
}

func (NopListingCache) Generation(context.Context) (int64, error) { return 0, nil }

func (NopListingCache) PostAvailable(context.Context, int64, []*domain.Listing) error { return nil }

func (NopListingCache) Invalidate(context.Context) error { return nil }
