package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fieldNames(fields []FieldError) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return names
}

func TestBookRequestEnumChecks(t *testing.T) {
	req := BookRequest{
		Genres:   []string{"Fiction", "NotAGenre"},
		Language: "Elvish",
		Format:   "Scroll",
		Status:   "Lost",
	}
	fields := req.enumFieldErrors()
	assert.ElementsMatch(t, []string{"genres", "language", "format", "status"}, fieldNames(fields))

	valid := BookRequest{
		Genres:   []string{"Fiction", "Mystery"},
		Language: "English",
		Format:   "Paperback",
		Status:   "Published",
	}
	assert.Empty(t, valid.enumFieldErrors())

	// Optional enums may be left empty.
	assert.Empty(t, (&BookRequest{}).enumFieldErrors())
}

func TestAuthorRequestDateOrder(t *testing.T) {
	birth := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	death := birth.AddDate(-10, 0, 0)
	req := AuthorRequest{BirthDate: &birth, DeathDate: &death}
	fields := req.enumFieldErrors()
	require.Len(t, fields, 1)
	assert.Equal(t, "deathDate", fields[0].Field)

	death = birth.AddDate(70, 0, 0)
	req = AuthorRequest{BirthDate: &birth, DeathDate: &death}
	assert.Empty(t, req.enumFieldErrors())
}

func TestPublisherRequestFoundedYearRange(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		wantErr bool
	}{
		{"unset", 0, false},
		{"too early", 1399, true},
		{"earliest accepted", 1400, false},
		{"current year", time.Now().Year(), false},
		{"future", time.Now().Year() + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PublisherRequest{FoundedYear: tt.year}
			fields := req.enumFieldErrors()
			if tt.wantErr {
				require.Len(t, fields, 1)
				assert.Equal(t, "foundedYear", fields[0].Field)
			} else {
				assert.Empty(t, fields)
			}
		})
	}
}

// Two books without an ISBN must be able to coexist after edits: the
// sparse unique index skips absent isbn fields but an empty string is
// present and would collide. An edit without an ISBN therefore removes
// the field instead of writing "".
func TestBookUpdateDocClearsEmptyISBN(t *testing.T) {
	authorID := primitive.NewObjectID()

	req := &BookRequest{Title: "Untitled", AuthorID: authorID.Hex()}
	set, unset := req.updateDoc(authorID, nil)
	assert.NotContains(t, set, "isbn")
	assert.Contains(t, unset, "isbn")

	req.ISBN = "978-0-00-000000-2"
	set, unset = req.updateDoc(authorID, nil)
	assert.Equal(t, "978-0-00-000000-2", set["isbn"])
	assert.Empty(t, unset)
}

func TestBookUpdateDocOptionalFields(t *testing.T) {
	authorID := primitive.NewObjectID()
	req := &BookRequest{Title: "Untitled", AuthorID: authorID.Hex(), ISBN: "9780000000002"}

	set, _ := req.updateDoc(authorID, nil)
	assert.NotContains(t, set, "publisherId", "no publisher resolved means no reference written")
	assert.NotContains(t, set, "status")
	assert.NotContains(t, set, "coverS3Key")
	assert.Equal(t, authorID, set["authorId"])

	publisherID := primitive.NewObjectID()
	req.Status = "Upcoming"
	req.CoverKey = "covers/abc.jpg"
	set, _ = req.updateDoc(authorID, &publisherID)
	assert.Equal(t, publisherID, set["publisherId"])
	assert.Equal(t, "Upcoming", set["status"])
	assert.Equal(t, "covers/abc.jpg", set["coverS3Key"])
}

func TestReviewRequestRatingBounds(t *testing.T) {
	base := ReviewRequest{TargetKind: "book", TargetID: "665f00000000000000000001"}

	for _, rating := range []int{1, 3, 5} {
		req := base
		req.Rating = rating
		assert.NoError(t, validate.Struct(req), "rating %d must pass", rating)
	}
	for _, rating := range []int{0, 6, -1} {
		req := base
		req.Rating = rating
		assert.Error(t, validate.Struct(req), "rating %d must fail", rating)
	}
}
