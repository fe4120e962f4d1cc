package service

import (
	"context"
	"errors"
	"testing"

	"github.com/booknest/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRatingStore holds reviews in memory and records every aggregate
// writeback so tests can assert on the stored values.
type fakeRatingStore struct {
	reviews     []models.Review
	bookAuthors []primitive.ObjectID

	written     map[models.ReviewTarget]writtenRating
	bookCounts  map[primitive.ObjectID]int64
	summaryErr  error
	setRatingErr error
}

type writtenRating struct {
	avg   float64
	count int64
}

func newFakeRatingStore() *fakeRatingStore {
	return &fakeRatingStore{
		written:    map[models.ReviewTarget]writtenRating{},
		bookCounts: map[primitive.ObjectID]int64{},
	}
}

func (f *fakeRatingStore) PublishedRatingSummary(_ context.Context, target models.ReviewTarget) (float64, int64, error) {
	if f.summaryErr != nil {
		return 0, 0, f.summaryErr
	}
	var sum int
	var count int64
	for _, r := range f.reviews {
		if r.Target == target && r.Status == models.ReviewPublished {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (f *fakeRatingStore) SetRating(_ context.Context, target models.ReviewTarget, avg float64, count int64) error {
	if f.setRatingErr != nil {
		return f.setRatingErr
	}
	f.written[target] = writtenRating{avg: avg, count: count}
	return nil
}

func (f *fakeRatingStore) AuthorBookCount(_ context.Context, authorID primitive.ObjectID) (int64, error) {
	var n int64
	for _, a := range f.bookAuthors {
		if a == authorID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRatingStore) SetAuthorBooksPublished(_ context.Context, authorID primitive.ObjectID, n int64) error {
	f.bookCounts[authorID] = n
	return nil
}

func bookTarget(t *testing.T) models.ReviewTarget {
	t.Helper()
	return models.ReviewTarget{Kind: models.TargetBook, ID: primitive.NewObjectID()}
}

func review(target models.ReviewTarget, rating int, status string) models.Review {
	return models.Review{
		ID:     primitive.NewObjectID(),
		Target: target,
		Rating: rating,
		Status: status,
	}
}

func TestRecomputeLifecycle(t *testing.T) {
	store := newFakeRatingStore()
	rec := &Recalculator{Store: store}
	target := bookTarget(t)
	ctx := context.Background()

	// No reviews yet: aggregate is zero.
	require.NoError(t, rec.Recompute(ctx, target))
	assert.Equal(t, writtenRating{avg: 0, count: 0}, store.written[target])

	// One published 4-star review.
	first := review(target, 4, models.ReviewPublished)
	store.reviews = append(store.reviews, first)
	rec.OnReviewMutation(&first, ReviewCreated, nil)
	assert.Equal(t, writtenRating{avg: 4, count: 1}, store.written[target])

	// A second published 2-star review: mean 3 over 2.
	second := review(target, 2, models.ReviewPublished)
	store.reviews = append(store.reviews, second)
	rec.OnReviewMutation(&second, ReviewCreated, nil)
	assert.Equal(t, writtenRating{avg: 3, count: 2}, store.written[target])

	// Hiding the first review removes it from the aggregate.
	store.reviews[0].Status = models.ReviewHidden
	rec.OnReviewMutation(&store.reviews[0], ReviewUpdated, nil)
	assert.Equal(t, writtenRating{avg: 2, count: 1}, store.written[target])

	// Deleting the last published review drives the aggregate back to
	// zero rather than leaving a stale value.
	store.reviews = store.reviews[:1]
	rec.OnReviewMutation(&second, ReviewDeleted, nil)
	assert.Equal(t, writtenRating{avg: 0, count: 0}, store.written[target])

	// Re-publishing the hidden review re-includes it.
	store.reviews[0].Status = models.ReviewPublished
	rec.OnReviewMutation(&store.reviews[0], ReviewUpdated, nil)
	assert.Equal(t, writtenRating{avg: 4, count: 1}, store.written[target])
}

func TestRecomputeOnlyCountsPublished(t *testing.T) {
	store := newFakeRatingStore()
	rec := &Recalculator{Store: store}
	target := bookTarget(t)

	store.reviews = []models.Review{
		review(target, 5, models.ReviewPublished),
		review(target, 1, models.ReviewPending),
		review(target, 1, models.ReviewHidden),
		review(target, 1, models.ReviewFlagged),
		review(target, 3, models.ReviewPublished),
	}
	require.NoError(t, rec.Recompute(context.Background(), target))
	assert.Equal(t, writtenRating{avg: 4, count: 2}, store.written[target])
}

func TestRecomputeIgnoresOtherTargets(t *testing.T) {
	store := newFakeRatingStore()
	rec := &Recalculator{Store: store}
	target := bookTarget(t)
	other := models.ReviewTarget{Kind: models.TargetAuthor, ID: primitive.NewObjectID()}

	store.reviews = []models.Review{
		review(target, 2, models.ReviewPublished),
		review(other, 5, models.ReviewPublished),
	}
	require.NoError(t, rec.Recompute(context.Background(), target))
	assert.Equal(t, writtenRating{avg: 2, count: 1}, store.written[target])
}

func TestTargetMoveRecomputesBothTargets(t *testing.T) {
	store := newFakeRatingStore()
	rec := &Recalculator{Store: store}
	oldTarget := bookTarget(t)
	newTarget := bookTarget(t)

	// The review used to point at oldTarget and now points at newTarget.
	moved := review(newTarget, 5, models.ReviewPublished)
	store.reviews = []models.Review{moved}
	rec.OnReviewMutation(&moved, ReviewUpdated, &oldTarget)

	assert.Equal(t, writtenRating{avg: 5, count: 1}, store.written[newTarget])
	assert.Equal(t, writtenRating{avg: 0, count: 0}, store.written[oldTarget])
}

func TestUnchangedTargetRecomputedOnce(t *testing.T) {
	store := newFakeRatingStore()
	rec := &Recalculator{Store: store}
	target := bookTarget(t)

	rv := review(target, 3, models.ReviewPublished)
	store.reviews = []models.Review{rv}
	same := rv.Target
	rec.OnReviewMutation(&rv, ReviewUpdated, &same)

	require.Len(t, store.written, 1)
	assert.Equal(t, writtenRating{avg: 3, count: 1}, store.written[target])
}

func TestRecomputeFailureIsNotFatal(t *testing.T) {
	store := newFakeRatingStore()
	store.summaryErr = errors.New("backend down")
	rec := &Recalculator{Store: store}
	target := bookTarget(t)

	rv := review(target, 4, models.ReviewPublished)
	// Must not panic and must not write anything.
	rec.OnReviewMutation(&rv, ReviewCreated, nil)
	assert.Empty(t, store.written)

	err := rec.Recompute(context.Background(), target)
	require.Error(t, err)
}

func TestFractionalMeanIsNotRounded(t *testing.T) {
	store := newFakeRatingStore()
	rec := &Recalculator{Store: store}
	target := bookTarget(t)

	store.reviews = []models.Review{
		review(target, 5, models.ReviewPublished),
		review(target, 4, models.ReviewPublished),
		review(target, 4, models.ReviewPublished),
	}
	require.NoError(t, rec.Recompute(context.Background(), target))
	assert.InDelta(t, 13.0/3.0, store.written[target].avg, 1e-9)
	assert.Equal(t, int64(3), store.written[target].count)
}

func TestRecountBooks(t *testing.T) {
	store := newFakeRatingStore()
	rec := &Recalculator{Store: store}
	author := primitive.NewObjectID()
	otherAuthor := primitive.NewObjectID()

	store.bookAuthors = []primitive.ObjectID{author, author, otherAuthor}
	require.NoError(t, rec.RecountBooks(context.Background(), author))
	assert.Equal(t, int64(2), store.bookCounts[author])

	// Moving a book to another author recounts both.
	store.bookAuthors = []primitive.ObjectID{author, otherAuthor, otherAuthor}
	rec.OnBookMutation(otherAuthor, &author)
	assert.Equal(t, int64(1), store.bookCounts[author])
	assert.Equal(t, int64(2), store.bookCounts[otherAuthor])
}
