package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Award struct {
	Name        string `bson:"name" json:"name"`
	Year        int    `bson:"year,omitempty" json:"year,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

type Author struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	PenName        string             `bson:"penName,omitempty" json:"penName,omitempty"`
	Biography      string             `bson:"biography,omitempty" json:"biography,omitempty"`
	BirthDate      *time.Time         `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
	DeathDate      *time.Time         `bson:"deathDate,omitempty" json:"deathDate,omitempty"`
	Nationality    string             `bson:"nationality,omitempty" json:"nationality,omitempty"`
	Website        string             `bson:"website,omitempty" json:"website,omitempty"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Genres         []string           `bson:"genres,omitempty" json:"genres,omitempty"`
	Languages      []string           `bson:"languages,omitempty" json:"languages,omitempty"`
	Awards         []Award            `bson:"awards,omitempty" json:"awards,omitempty"`
	SocialMedia    map[string]string  `bson:"socialMedia,omitempty" json:"socialMedia,omitempty"`
	BooksPublished int64              `bson:"booksPublished" json:"booksPublished"`
	AverageRating  float64            `bson:"averageRating" json:"averageRating"`
	RatingCount    int64              `bson:"ratingCount" json:"ratingCount"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
