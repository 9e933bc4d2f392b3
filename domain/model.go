package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
	"unicode/utf8"
)

// FeaturedLimit caps the number of listings in the featured section.
const FeaturedLimit = 6

type RoomType string

const (
	Single RoomType = "Single"
	Shared RoomType = "Shared"
	Master RoomType = "Master"
	Studio RoomType = "Studio"
)

type Lifestyle struct {
	Pets      bool `bson:"pets" json:"pets"`
	Smoking   bool `bson:"smoking" json:"smoking"`
	NightOwl  bool `bson:"nightOwl" json:"nightOwl"`
	EarlyBird bool `bson:"earlyBird" json:"earlyBird"`
	Drinking  bool `bson:"drinking" json:"drinking"`
	Visitors  bool `bson:"visitors" json:"visitors"`
}

type Listing struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Location     string             `bson:"location" json:"location"`
	Description  string             `bson:"description" json:"description"`
	RentAmount   float64            `bson:"rentAmount" json:"rentAmount"`
	RoomType     RoomType           `bson:"roomType" json:"roomType"`
	Lifestyle    Lifestyle          `bson:"lifestyle" json:"lifestyle"`
	Availability bool               `bson:"availability" json:"availability"`
	ImageURL     string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ContactInfo  string             `bson:"contactInfo" json:"contactInfo,omitempty"`
	Email        string             `bson:"email" json:"email"`
	UserName     string             `bson:"userName" json:"userName"`
	Likes        int                `bson:"likes" json:"likes"`
	LikedBy      []string           `bson:"likedBy" json:"likedBy"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// LikedByUser reports whether email is already recorded as a voter.
func (l *Listing) LikedByUser(email string) bool {
	for _, voter := range l.LikedBy {
		if voter == email {
			return true
		}
	}
	return false
}

// ContactVisibleTo reports whether the viewer may see the contact number:
// the owner, anyone who liked the listing, and admins.
func (l *Listing) ContactVisibleTo(viewer *Identity) bool {
	if viewer == nil || viewer.Email == "" {
		return false
	}
	return viewer.IsAdmin() || viewer.Email == l.Email || l.LikedByUser(viewer.Email)
}

// VisibleTo returns a copy of the listing with the contact redacted when the
// viewer is not entitled to it.
func (l *Listing) VisibleTo(viewer *Identity) *Listing {
	visible := *l
	if visible.LikedBy == nil {
		visible.LikedBy = []string{}
	}
	if !l.ContactVisibleTo(viewer) {
		visible.ContactInfo = ""
	}
	return &visible
}

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortTitleAsc  SortOrder = "asc"
	SortTitleDesc SortOrder = "desc"
)

const searchMaxBytes = 100

// ListingQuery narrows the browse listing. The zero value returns everything.
type ListingQuery struct {
	Search string
	Sort   SortOrder
}

// NewListingQuery normalizes raw query parameters; unknown sort values are ignored.
func NewListingQuery(search, sort string) ListingQuery {
	if len(search) > searchMaxBytes {
		cut := searchMaxBytes
		for cut > 0 && !utf8.RuneStart(search[cut]) {
			cut--
		}
		search = search[:cut]
	}
	query := ListingQuery{Search: search}
	switch SortOrder(sort) {
	case SortTitleAsc, SortTitleDesc:
		query.Sort = SortOrder(sort)
	}
	return query
}

type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

type LikeResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	Likes         int    `json:"likes,omitempty"`
	ContactInfo   string `json:"contactInfo,omitempty"`
}

type DashboardStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
	Mine   int64 `json:"mine"`
}
