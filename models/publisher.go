package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoundedYearMin is the earliest accepted founding year for a publisher.
const FoundedYearMin = 1400

type Headquarters struct {
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type Imprint struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

type Publisher struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	FoundedYear  int                `bson:"foundedYear,omitempty" json:"foundedYear,omitempty"`
	Headquarters Headquarters       `bson:"headquarters,omitempty" json:"headquarters,omitempty"`
	Website      string             `bson:"website,omitempty" json:"website,omitempty"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	Genres       []string           `bson:"genres,omitempty" json:"genres,omitempty"`
	Imprints     []Imprint          `bson:"imprints,omitempty" json:"imprints,omitempty"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
