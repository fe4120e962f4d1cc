package store

import (
	"context"
	"time"

	"github.com/booknest/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (db *DB) InsertAuthor(ctx context.Context, author *models.Author) (primitive.ObjectID, error) {
	res, err := db.Authors().InsertOne(ctx, author)
	if err != nil {
		return primitive.NilObjectID, mapErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) AuthorByID(ctx context.Context, id primitive.ObjectID) (*models.Author, error) {
	var author models.Author
	err := db.Authors().FindOne(ctx, bson.M{"_id": id}).Decode(&author)
	if err != nil {
		return nil, mapErr(err)
	}
	return &author, nil
}

// ListAuthors returns one page of authors for the given list parameters.
func (db *DB) ListAuthors(ctx context.Context, p ListParams) ([]models.Author, Pagination, error) {
	return listPage[models.Author](ctx, db.Authors(), authorListSpec, p)
}

func (db *DB) UpdateAuthor(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	res, err := db.Authors().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteAuthor(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.Authors().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AuthorBookCount counts the books referencing an author. Used both for
// the booksPublished recount and for the delete restriction.
func (db *DB) AuthorBookCount(ctx context.Context, authorID primitive.ObjectID) (int64, error) {
	return db.Books().CountDocuments(ctx, bson.M{"authorId": authorID})
}

// SetAuthorBooksPublished writes the recounted booksPublished value.
func (db *DB) SetAuthorBooksPublished(ctx context.Context, authorID primitive.ObjectID, n int64) error {
	res, err := db.Authors().UpdateOne(ctx,
		bson.M{"_id": authorID},
		bson.M{"$set": bson.M{"booksPublished": n}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
