package service

import (
	"context"
	"log"
	"time"

	"github.com/booknest/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewChange says what happened to a review.
type ReviewChange string

const (
	ReviewCreated ReviewChange = "create"
	ReviewUpdated ReviewChange = "update"
	ReviewDeleted ReviewChange = "delete"
)

// RatingStore is the storage the rating recalculator needs: the
// aggregation over Published reviews and the writeback of derived
// fields.
type RatingStore interface {
	PublishedRatingSummary(ctx context.Context, target models.ReviewTarget) (avg float64, count int64, err error)
	SetRating(ctx context.Context, target models.ReviewTarget, avg float64, count int64) error
	AuthorBookCount(ctx context.Context, authorID primitive.ObjectID) (int64, error)
	SetAuthorBooksPublished(ctx context.Context, authorID primitive.ObjectID, n int64) error
}

// Recalculator keeps the denormalized averageRating/ratingCount on
// books and authors (and the author booksPublished counter) equal to
// what a full recount of current source records yields. It always
// recomputes from source rather than applying deltas, so status flips
// and edits cannot leave the aggregate stale.
type Recalculator struct {
	Store   RatingStore
	Timeout time.Duration
}

const defaultRecomputeTimeout = 15 * time.Second

func (r *Recalculator) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return defaultRecomputeTimeout
}

// OnReviewMutation recomputes the rating aggregate of every target a
// review is, or was, attached to. It is called after the review write
// has committed and uses its own context: the caller's request may
// already be finished, and a recompute failure must never fail the
// review operation, so failures are only logged.
func (r *Recalculator) OnReviewMutation(review *models.Review, change ReviewChange, previousTarget *models.ReviewTarget) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()
	r.recompute(ctx, review.Target, change)
	if previousTarget != nil && *previousTarget != review.Target {
		r.recompute(ctx, *previousTarget, change)
	}
}

func (r *Recalculator) recompute(ctx context.Context, target models.ReviewTarget, change ReviewChange) {
	if err := r.Recompute(ctx, target); err != nil {
		log.Printf("ratings: recompute after %s for %s %s: %v", change, target.Kind, target.ID.Hex(), err)
	}
}

// Recompute recalculates the mean and count of the target's Published
// reviews and writes them onto the target. With no Published reviews it
// writes zeros so a removed last review never leaves a stale average.
func (r *Recalculator) Recompute(ctx context.Context, target models.ReviewTarget) error {
	avg, count, err := r.Store.PublishedRatingSummary(ctx, target)
	if err != nil {
		return err
	}
	if count == 0 {
		avg = 0
	}
	return r.Store.SetRating(ctx, target, avg, count)
}

// OnBookMutation recounts booksPublished for the book's author and,
// when an update moved the book to a different author, for the previous
// author too. Same failure policy as review recomputation.
func (r *Recalculator) OnBookMutation(authorID primitive.ObjectID, previousAuthor *primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()
	r.recountBooks(ctx, authorID)
	if previousAuthor != nil && *previousAuthor != authorID {
		r.recountBooks(ctx, *previousAuthor)
	}
}

func (r *Recalculator) recountBooks(ctx context.Context, authorID primitive.ObjectID) {
	if err := r.RecountBooks(ctx, authorID); err != nil {
		log.Printf("ratings: recount books for author %s: %v", authorID.Hex(), err)
	}
}

// RecountBooks recounts an author's books and writes booksPublished.
func (r *Recalculator) RecountBooks(ctx context.Context, authorID primitive.ObjectID) error {
	n, err := r.Store.AuthorBookCount(ctx, authorID)
	if err != nil {
		return err
	}
	return r.Store.SetAuthorBooksPublished(ctx, authorID, n)
}
