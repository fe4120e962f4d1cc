package store

import (
	"context"
	"time"

	"github.com/booknest/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (db *DB) InsertPublisher(ctx context.Context, publisher *models.Publisher) (primitive.ObjectID, error) {
	res, err := db.Publishers().InsertOne(ctx, publisher)
	if err != nil {
		return primitive.NilObjectID, mapErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) PublisherByID(ctx context.Context, id primitive.ObjectID) (*models.Publisher, error) {
	var publisher models.Publisher
	err := db.Publishers().FindOne(ctx, bson.M{"_id": id}).Decode(&publisher)
	if err != nil {
		return nil, mapErr(err)
	}
	return &publisher, nil
}

// ListPublishers returns one page of publishers for the given list
// parameters.
func (db *DB) ListPublishers(ctx context.Context, p ListParams) ([]models.Publisher, Pagination, error) {
	return listPage[models.Publisher](ctx, db.Publishers(), publisherListSpec, p)
}

func (db *DB) UpdatePublisher(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	res, err := db.Publishers().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeletePublisher(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.Publishers().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UnsetBookPublisher clears the publisher reference on all books of a
// deleted publisher.
func (db *DB) UnsetBookPublisher(ctx context.Context, publisherID primitive.ObjectID) error {
	_, err := db.Books().UpdateMany(ctx,
		bson.M{"publisherId": publisherID},
		bson.M{
			"$unset": bson.M{"publisherId": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		})
	return err
}
