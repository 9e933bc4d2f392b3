package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"regexp"
	"roommate_service/domain"
	"roommate_service/errors"
	"time"
)

const (
	DATABASE   = "roommate"
	COLLECTION = "add"
)

type ListingMongoDBStore struct {
	listings *mongo.Collection
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewListingMongoDBStore(client *mongo.Client, database, collection string, tracer trace.Tracer, logger *logrus.Logger) *ListingMongoDBStore {
	if database == "" {
		database = DATABASE
	}
	if collection == "" {
		collection = COLLECTION
	}
	return NewListingMongoDBStoreFromCollection(client.Database(database).Collection(collection), tracer, logger)
}

func NewListingMongoDBStoreFromCollection(listings *mongo.Collection, tracer trace.Tracer, logger *logrus.Logger) *ListingMongoDBStore {
	return &ListingMongoDBStore{
		listings: listings,
		tracer:   tracer,
		logger:   logger,
	}
}

// EnsureIndexes creates the indexes behind the by-email and featured queries.
func (store *ListingMongoDBStore) EnsureIndexes(ctx context.Context) error {
	_, err := store.listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "availability", Value: 1}, {Key: "likes", Value: -1}}},
	})
	return err
}

func (store *ListingMongoDBStore) GetAll(ctx context.Context, query domain.ListingQuery) ([]*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.GetAll")
	defer span.End()

	filter := bson.M{}
	if query.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"location": pattern},
			bson.M{"userName": pattern},
		}
	}

	opts := options.Find()
	switch query.Sort {
	case domain.SortTitleAsc:
		opts.SetSort(bson.D{{Key: "title", Value: 1}})
	case domain.SortTitleDesc:
		opts.SetSort(bson.D{{Key: "title", Value: -1}})
	}

	listings, err := store.filter(ctx, filter, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return listings, nil
}

func (store *ListingMongoDBStore) GetByEmail(ctx context.Context, email string) ([]*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.GetByEmail")
	defer span.End()

	listings, err := store.filter(ctx, bson.M{"email": email})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return listings, nil
}

func (store *ListingMongoDBStore) GetAvailable(ctx context.Context, limit int64) ([]*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.GetAvailable")
	defer span.End()

	opts := options.Find().
		SetSort(bson.D{{Key: "likes", Value: -1}}).
		SetLimit(limit)
	listings, err := store.filter(ctx, bson.M{"availability": true}, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return listings, nil
}

func (store *ListingMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Get")
	defer span.End()

	listing, err := store.filterOne(ctx, bson.M{"_id": id})
	if err != nil {
		if !stderrors.Is(err, errors.ErrNotFound) {
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	return listing, nil
}

func (store *ListingMongoDBStore) Insert(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Insert")
	defer span.End()

	listing.ID = primitive.NewObjectID()
	result, err := store.listings.InsertOne(ctx, listing)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.WithError(err).Error("insert listing")
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	listing.ID = result.InsertedID.(primitive.ObjectID)
	return listing, nil
}

func (store *ListingMongoDBStore) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*domain.UpdateResult, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Update")
	defer span.End()

	set := bson.M{"updatedAt": time.Now().UTC()}
	for key, value := range fields {
		set[key] = value
	}

	result, err := store.listings.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.WithError(err).WithField("listing", id.Hex()).Error("update listing")
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return &domain.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	}, nil
}

// AddLike increments the counter and records the voter in a single update.
// The filter refuses the owner and anyone already in likedBy, so concurrent
// requests cannot slip past the checks the service makes beforehand.
func (store *ListingMongoDBStore) AddLike(ctx context.Context, id primitive.ObjectID, email string) (*domain.Listing, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.AddLike")
	defer span.End()

	filter := bson.M{
		"_id":     id,
		"email":   bson.M{"$ne": email},
		"likedBy": bson.M{"$ne": email},
	}
	update := bson.M{
		"$inc":  bson.M{"likes": 1},
		"$push": bson.M{"likedBy": email},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing domain.Listing
	err := store.listings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.WithError(err).WithField("listing", id.Hex()).Error("like listing")
		return nil, fmt.Errorf("like listing: %w", err)
	}
	return &listing, nil
}

func (store *ListingMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID) (*domain.DeleteResult, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Delete")
	defer span.End()

	result, err := store.listings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.WithError(err).WithField("listing", id.Hex()).Error("delete listing")
		return nil, fmt.Errorf("delete listing: %w", err)
	}
	return &domain.DeleteResult{Acknowledged: true, DeletedCount: result.DeletedCount}, nil
}

func (store *ListingMongoDBStore) Count(ctx context.Context, countFilter domain.CountFilter) (int64, error) {
	ctx, span := store.tracer.Start(ctx, "ListingStore.Count")
	defer span.End()

	filter := bson.M{}
	if countFilter.AvailableOnly {
		filter["availability"] = true
	}
	if countFilter.Email != "" {
		filter["email"] = countFilter.Email
	}

	count, err := store.listings.CountDocuments(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

func (store *ListingMongoDBStore) filter(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]*domain.Listing, error) {
	cursor, err := store.listings.Find(ctx, filter, opts...)
	if err != nil {
		store.logger.WithError(err).Error("find listings")
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer cursor.Close(ctx)

	return decode(ctx, cursor)
}

func (store *ListingMongoDBStore) filterOne(ctx context.Context, filter interface{}) (*domain.Listing, error) {
	var listing domain.Listing
	err := store.listings.FindOne(ctx, filter).Decode(&listing)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		store.logger.WithError(err).Error("find listing")
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return &listing, nil
}

func decode(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Listing, error) {
	listings := []*domain.Listing{}
	for cursor.Next(ctx) {
		var listing domain.Listing
		if err := cursor.Decode(&listing); err != nil {
			return nil, fmt.Errorf("decode listing: %w", err)
		}
		listings = append(listings, &listing)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read listings: %w", err)
	}
	return listings, nil
}
