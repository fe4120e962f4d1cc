package store

import (
	"context"
	"time"

	"github.com/booknest/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book)
	if err != nil {
		return primitive.NilObjectID, mapErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		return nil, mapErr(err)
	}
	return &book, nil
}

// ListBooks returns one page of books for the given list parameters.
func (db *DB) ListBooks(ctx context.Context, p ListParams) ([]models.Book, Pagination, error) {
	return listPage[models.Book](ctx, db.Books(), bookListSpec, p)
}

// UpdateBook applies the given field updates and stamps updatedAt.
// Fields named in unset are removed from the document.
func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, set, unset bson.M) error {
	set["updatedAt"] = time.Now()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBook removes a book and returns the deleted document so the
// caller can clean up its cover object and recount the author's books.
func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		return nil, mapErr(err)
	}
	return &book, nil
}

// AuthorSummariesByIDs fetches name summaries for the given author ids,
// keyed by id, for populating book responses.
func (db *DB) AuthorSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AuthorSummary, error) {
	out := map[primitive.ObjectID]models.AuthorSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := db.Authors().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var summaries []models.AuthorSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}

// PublisherSummariesByIDs fetches name summaries for the given
// publisher ids, keyed by id.
func (db *DB) PublisherSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublisherSummary, error) {
	out := map[primitive.ObjectID]models.PublisherSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := db.Publishers().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var summaries []models.PublisherSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}

// ISBNInUse reports whether another book already has the given ISBN.
func (db *DB) ISBNInUse(ctx context.Context, isbn string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"isbn": isbn}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := db.Books().CountDocuments(ctx, filter)
	return n > 0, err
}
