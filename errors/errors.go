package errors

import stderrors "errors"

const (
	InvalidListingIdError     = "invalid listing id"
	ListingNotFoundError      = "listing not found"
	InvalidRequestFormatError = "Invalid request format"
	EmptyUpdateError          = "no updatable fields in request"
	ForbiddenError            = "you are not allowed to modify this listing"
	UnauthenticatedError      = "authentication required"
	InvalidTokenError         = "Token is invalid"
	DatabaseError             = "Database error"
	OwnLikeError              = "Cannot like your own post"
	AlreadyLikedError         = "You have already liked this post"
	LikeAddedMessage          = "Like added successfully"
	LikeFailedMessage         = "Failed to like"
)

var (
	ErrInvalidID       = stderrors.New(InvalidListingIdError)
	ErrNotFound        = stderrors.New(ListingNotFoundError)
	ErrEmptyUpdate     = stderrors.New(EmptyUpdateError)
	ErrForbidden       = stderrors.New(ForbiddenError)
	ErrUnauthenticated = stderrors.New(UnauthenticatedError)
	ErrInvalidToken    = stderrors.New(InvalidTokenError)
	ErrStaleCache      = stderrors.New("featured listings changed while loading")
)

type ValidationError struct {
	Message string `json:"message"`
}

func (v *ValidationError) Error() string {
	return v.Message
}
