package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetKind says whether a review is about a book or an author.
type TargetKind string

const (
	TargetBook   TargetKind = "book"
	TargetAuthor TargetKind = "author"
)

// ReviewTarget identifies the single entity a review is about. Using one
// kind+id pair instead of two nullable references makes "both set" and
// "neither set" unrepresentable.
type ReviewTarget struct {
	Kind TargetKind         `bson:"targetKind" json:"kind"`
	ID   primitive.ObjectID `bson:"targetId" json:"id"`
}

func (t ReviewTarget) Validate() error {
	if t.Kind != TargetBook && t.Kind != TargetAuthor {
		return errors.New("target kind must be book or author")
	}
	if t.ID.IsZero() {
		return errors.New("target id is required")
	}
	return nil
}

type Review struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title            string              `bson:"title,omitempty" json:"title,omitempty"`
	Content          string              `bson:"content,omitempty" json:"content,omitempty"`
	Rating           int                 `bson:"rating" json:"rating"`
	Target           ReviewTarget        `bson:",inline" json:"target"`
	UserID           primitive.ObjectID  `bson:"userId" json:"userId"`
	HelpfulVotes     int64               `bson:"helpfulVotes" json:"helpfulVotes"`
	Status           string              `bson:"status" json:"status"`
	ModeratedBy      *primitive.ObjectID `bson:"moderatedBy,omitempty" json:"moderatedBy,omitempty"`
	ModeratedAt      *time.Time          `bson:"moderatedAt,omitempty" json:"moderatedAt,omitempty"`
	ModerationReason string              `bson:"moderationReason,omitempty" json:"moderationReason,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ReviewerSummary is the populated form of a review's user reference.
type ReviewerSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	DisplayName string             `bson:"displayName" json:"displayName"`
}
