package store

import (
	"context"
	"time"

	"github.com/booknest/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, mapErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// UpsertGoogleUser finds the user for a verified Google identity,
// creating one with the reader role on first login. Email and display
// name are refreshed from the token on every login.
func (db *DB) UpsertGoogleUser(ctx context.Context, sub, email, displayName string) (*models.User, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"email":       email,
			"displayName": displayName,
		},
		"$setOnInsert": bson.M{
			"googleSub": sub,
			"role":      models.RoleReader,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var u models.User
	err := db.Users().FindOneAndUpdate(ctx, bson.M{"googleSub": sub}, update, opts).Decode(&u)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// UpdateUserProfile sets displayName and preferences for a user.
func (db *DB) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, displayName *string, prefs *models.Preferences) error {
	set := bson.M{}
	if displayName != nil {
		set["displayName"] = *displayName
	}
	if prefs != nil {
		set["preferences"] = *prefs
	}
	if len(set) == 0 {
		return nil
	}
	res, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFavorite adds a book to the user's favorites set ($addToSet keeps
// it duplicate-free).
func (db *DB) AddFavorite(ctx context.Context, userID, bookID primitive.ObjectID) error {
	res, err := db.Users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"favorites": bookID}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) RemoveFavorite(ctx context.Context, userID, bookID primitive.ObjectID) error {
	res, err := db.Users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"favorites": bookID}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertReadingEntry replaces the reading-history entry for a book, or
// appends one if the user has none for that book yet.
func (db *DB) UpsertReadingEntry(ctx context.Context, userID primitive.ObjectID, entry models.ReadingEntry) error {
	res, err := db.Users().UpdateOne(ctx,
		bson.M{"_id": userID, "readingHistory.bookId": entry.BookID},
		bson.M{"$set": bson.M{"readingHistory.$": entry}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	res, err = db.Users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"readingHistory": entry}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
