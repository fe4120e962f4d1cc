package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title         string              `bson:"title" json:"title"`
	ISBN          string              `bson:"isbn,omitempty" json:"isbn,omitempty"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	AuthorID      primitive.ObjectID  `bson:"authorId" json:"authorId"`
	PublisherID   *primitive.ObjectID `bson:"publisherId,omitempty" json:"publisherId,omitempty"`
	PublishDate   time.Time           `bson:"publishDate" json:"publishDate"`
	Genres        []string            `bson:"genres,omitempty" json:"genres,omitempty"`
	Language      string              `bson:"language,omitempty" json:"language,omitempty"`
	PageCount     int                 `bson:"pageCount,omitempty" json:"pageCount,omitempty"`
	Format        string              `bson:"format,omitempty" json:"format,omitempty"`
	Price         float64             `bson:"price,omitempty" json:"price,omitempty"`
	CoverURL      string              `bson:"coverUrl,omitempty" json:"coverUrl,omitempty"`
	CoverS3Key    string              `bson:"coverS3Key,omitempty" json:"-"`
	Tags          []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	AverageRating float64             `bson:"averageRating" json:"averageRating"`
	RatingCount   int64               `bson:"ratingCount" json:"ratingCount"`
	Status        string              `bson:"status" json:"status"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// AuthorSummary is the populated form of a book's author reference in
// list and detail responses.
type AuthorSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	PenName   string             `bson:"penName,omitempty" json:"penName,omitempty"`
}

// PublisherSummary is the populated form of a book's publisher reference.
type PublisherSummary struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}
