package store

import (
	"context"
	"time"

	"github.com/booknest/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (db *DB) InsertReview(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	res, err := db.Reviews().InsertOne(ctx, review)
	if err != nil {
		return primitive.NilObjectID, mapErr(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := db.Reviews().FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		return nil, mapErr(err)
	}
	return &review, nil
}

// ListReviews returns one page of reviews for the given list parameters.
func (db *DB) ListReviews(ctx context.Context, p ListParams) ([]models.Review, Pagination, error) {
	return listPage[models.Review](ctx, db.Reviews(), reviewListSpec, p)
}

func (db *DB) UpdateReview(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now()
	res, err := db.Reviews().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.Reviews().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReviewsForTarget removes every review of a deleted book or
// author (cascade).
func (db *DB) DeleteReviewsForTarget(ctx context.Context, target models.ReviewTarget) (int64, error) {
	res, err := db.Reviews().DeleteMany(ctx, bson.M{
		"targetKind": target.Kind,
		"targetId":   target.ID,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IncrementHelpfulVotes bumps a review's helpful-vote counter.
func (db *DB) IncrementHelpfulVotes(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.Reviews().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"helpfulVotes": 1}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishedRatingSummary computes the mean rating and count over the
// currently Published reviews of a target. No matching reviews yields
// (0, 0), never an error.
func (db *DB) PublishedRatingSummary(ctx context.Context, target models.ReviewTarget) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"targetKind": target.Kind,
			"targetId":   target.ID,
			"status":     models.ReviewPublished,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := db.Reviews().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Avg, rows[0].Count, nil
}

// SetRating writes the recomputed aggregate onto the target entity.
func (db *DB) SetRating(ctx context.Context, target models.ReviewTarget, avg float64, count int64) error {
	coll := db.Books()
	if target.Kind == models.TargetAuthor {
		coll = db.Authors()
	}
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": target.ID},
		bson.M{"$set": bson.M{"averageRating": avg, "ratingCount": count}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReviewerSummariesByIDs fetches display names for the given user ids,
// keyed by id, for populating review responses.
func (db *DB) ReviewerSummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.ReviewerSummary, error) {
	out := map[primitive.ObjectID]models.ReviewerSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := db.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var summaries []models.ReviewerSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}
