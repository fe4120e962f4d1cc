package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Preferences struct {
	FavoriteGenres     []string `bson:"favoriteGenres,omitempty" json:"favoriteGenres,omitempty"`
	EmailNotifications bool     `bson:"emailNotifications" json:"emailNotifications"`
}

// ReadingEntry is one book in a user's reading history.
type ReadingEntry struct {
	BookID     primitive.ObjectID `bson:"bookId" json:"bookId"`
	Status     string             `bson:"status" json:"status"`
	Progress   int                `bson:"progress" json:"progress"` // percent, 0-100
	StartedAt  *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	FinishedAt *time.Time         `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`
}

type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	GoogleSub      string               `bson:"googleSub,omitempty" json:"-"`
	Email          string               `bson:"email" json:"email"`
	DisplayName    string               `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Password       string               `bson:"password,omitempty" json:"-"` // bcrypt hash, bootstrap admin only
	Role           string               `bson:"role" json:"role"`
	Preferences    Preferences          `bson:"preferences,omitempty" json:"preferences"`
	Favorites      []primitive.ObjectID `bson:"favorites,omitempty" json:"favorites,omitempty"`
	ReadingHistory []ReadingEntry       `bson:"readingHistory,omitempty" json:"readingHistory,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
}
