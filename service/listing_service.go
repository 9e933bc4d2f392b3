package application

import (
	"context"
	stderrors "errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"roommate_service/domain"
	"roommate_service/errors"
	"time"
)

type ListingService struct {
	store    domain.ListingStore
	cache    domain.ListingCache
	notifier domain.LikeNotifier
	tracer   trace.Tracer
	logger   *logrus.Logger
	now      func() time.Time
}

func NewListingService(store domain.ListingStore, cache domain.ListingCache, notifier domain.LikeNotifier, tracer trace.Tracer, logger *logrus.Logger) *ListingService {
	return &ListingService{
		store:    store,
		cache:    cache,
		notifier: notifier,
		tracer:   tracer,
		logger:   logger,
		now:      time.Now,
	}
}

func ParseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errors.ErrInvalidID
	}
	return objectID, nil
}

func (service *ListingService) GetAll(ctx context.Context, viewer *domain.Identity, query domain.ListingQuery) ([]*domain.Listing, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.GetAll")
	defer span.End()

	listings, err := service.store.GetAll(ctx, query)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return visibleTo(listings, viewer), nil
}

func (service *ListingService) GetByEmail(ctx context.Context, viewer *domain.Identity, email string) ([]*domain.Listing, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.GetByEmail")
	defer span.End()

	listings, err := service.store.GetByEmail(ctx, email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return visibleTo(listings, viewer), nil
}

// GetAvailable returns the featured section: up to FeaturedLimit available
// listings, most liked first. The section is served from the cache when possible.
func (service *ListingService) GetAvailable(ctx context.Context, viewer *domain.Identity) ([]*domain.Listing, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.GetAvailable")
	defer span.End()

	listings, err := service.cache.GetAvailable(ctx)
	if err == nil {
		return visibleTo(listings, viewer), nil
	}

	generation, genErr := service.cache.Generation(ctx)
	listings, err = service.store.GetAvailable(ctx, domain.FeaturedLimit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if genErr != nil {
		service.logger.WithError(genErr).Warn("could not read featured listings generation")
		return visibleTo(listings, viewer), nil
	}
	err = service.cache.PostAvailable(ctx, generation, listings)
	if stderrors.Is(err, errors.ErrStaleCache) {
		service.logger.Debug("featured listings changed while loading, not cached")
	} else if err != nil {
		service.logger.WithError(err).Warn("could not cache featured listings")
	}
	return visibleTo(listings, viewer), nil
}

func (service *ListingService) Get(ctx context.Context, viewer *domain.Identity, id string) (*domain.Listing, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Get")
	defer span.End()

	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	listing, err := service.store.Get(ctx, objectID)
	if err != nil {
		return nil, err
	}
	return listing.VisibleTo(viewer), nil
}

func (service *ListingService) Create(ctx context.Context, owner *domain.Identity, input *domain.ListingInput) (*domain.InsertResult, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Create")
	defer span.End()

	if owner == nil {
		return nil, errors.ErrUnauthenticated
	}

	saved, err := service.store.Insert(ctx, input.ToListing(owner, service.now().UTC()))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	service.invalidate(ctx)

	service.logger.WithFields(logrus.Fields{"listing": saved.ID.Hex(), "owner": owner.Email}).Info("listing created")
	return &domain.InsertResult{Acknowledged: true, InsertedID: saved.ID}, nil
}

// Like applies the like rule: the owner cannot like their own listing and a
// voter counts once. Rule violations are reported in the result, not as errors.
func (service *ListingService) Like(ctx context.Context, voter *domain.Identity, id string) (*domain.LikeResult, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Like")
	defer span.End()

	if voter == nil {
		return nil, errors.ErrUnauthenticated
	}
	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	listing, err := service.store.Get(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if listing.Email == voter.Email {
		return &domain.LikeResult{Success: false, Message: errors.OwnLikeError, Likes: listing.Likes}, nil
	}
	if listing.LikedByUser(voter.Email) {
		return &domain.LikeResult{Success: false, Message: errors.AlreadyLikedError, Likes: listing.Likes, ContactInfo: listing.ContactInfo}, nil
	}

	liked, err := service.store.AddLike(ctx, objectID, voter.Email)
	if stderrors.Is(err, errors.ErrNotFound) {
		// a concurrent request recorded the same voter first, or the listing is gone
		return &domain.LikeResult{Success: false, Message: errors.LikeFailedMessage, Likes: listing.Likes}, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	service.invalidate(ctx)
	service.notifyOwner(liked, voter)
	return &domain.LikeResult{
		Success:       true,
		Message:       errors.LikeAddedMessage,
		MatchedCount:  1,
		ModifiedCount: 1,
		Likes:         liked.Likes,
		ContactInfo:   liked.ContactInfo,
	}, nil
}

func (service *ListingService) Update(ctx context.Context, editor *domain.Identity, id string, patch *domain.ListingPatch) (*domain.UpdateResult, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Update")
	defer span.End()

	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil, errors.ErrEmptyUpdate
	}
	if err := service.authorizeOwner(ctx, editor, objectID); err != nil {
		return nil, err
	}

	result, err := service.store.Update(ctx, objectID, fields)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	service.invalidate(ctx)
	return result, nil
}

// Delete removes a listing. A missing listing is not an error: the result
// reports zero deleted documents.
func (service *ListingService) Delete(ctx context.Context, editor *domain.Identity, id string) (*domain.DeleteResult, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Delete")
	defer span.End()

	objectID, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	err = service.authorizeOwner(ctx, editor, objectID)
	if stderrors.Is(err, errors.ErrNotFound) {
		return &domain.DeleteResult{Acknowledged: true, DeletedCount: 0}, nil
	}
	if err != nil {
		return nil, err
	}

	result, err := service.store.Delete(ctx, objectID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	service.invalidate(ctx)
	return result, nil
}

func (service *ListingService) Stats(ctx context.Context, viewer *domain.Identity) (*domain.DashboardStats, error) {
	ctx, span := service.tracer.Start(ctx, "ListingService.Stats")
	defer span.End()

	var stats domain.DashboardStats
	var err error
	if stats.Total, err = service.store.Count(ctx, domain.CountFilter{}); err != nil {
		return nil, err
	}
	if stats.Active, err = service.store.Count(ctx, domain.CountFilter{AvailableOnly: true}); err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Email != "" {
		if stats.Mine, err = service.store.Count(ctx, domain.CountFilter{Email: viewer.Email}); err != nil {
			return nil, err
		}
	}
	return &stats, nil
}

func (service *ListingService) authorizeOwner(ctx context.Context, editor *domain.Identity, id primitive.ObjectID) error {
	if editor == nil {
		return errors.ErrUnauthenticated
	}
	listing, err := service.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if listing.Email != editor.Email && !editor.IsAdmin() {
		return errors.ErrForbidden
	}
	return nil
}

func (service *ListingService) invalidate(ctx context.Context) {
	if err := service.cache.Invalidate(ctx); err != nil {
		service.logger.WithError(err).Warn("could not invalidate featured listings")
	}
}

func (service *ListingService) notifyOwner(listing *domain.Listing, voter *domain.Identity) {
	if service.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := service.notifier.NotifyLike(ctx, listing, voter); err != nil {
			service.logger.WithError(err).WithField("listing", listing.ID.Hex()).Warn("like notification not sent")
		}
	}()
}

func visibleTo(listings []*domain.Listing, viewer *domain.Identity) []*domain.Listing {
	visible := make([]*domain.Listing, 0, len(listings))
	for _, listing := range listings {
		visible = append(visible, listing.VisibleTo(viewer))
	}
	return visible
}
