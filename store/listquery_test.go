package store

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func params(kv map[string]string) ListParams {
	q := url.Values{}
	for k, v := range kv {
		q.Set(k, v)
	}
	return ParseListParams(q)
}

func TestParseListParamsDefaults(t *testing.T) {
	p := ParseListParams(url.Values{})
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Empty(t, p.Search)
	assert.Empty(t, p.SortBy)
	assert.Empty(t, p.Filters)
}

func TestParseListParamsClamping(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"zero page", "0", "10", DefaultPage, 10},
		{"negative page", "-3", "10", DefaultPage, 10},
		{"garbage page", "abc", "10", DefaultPage, 10},
		{"limit above max", "2", "500", 2, MaxLimit},
		{"zero limit", "2", "0", 2, DefaultLimit},
		{"garbage limit", "2", "x", 2, DefaultLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(map[string]string{"page": tt.page, "limit": tt.limit})
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestParseListParamsIgnoresUnknown(t *testing.T) {
	p := params(map[string]string{"genre": "Fiction", "bogus": "x"})
	assert.Equal(t, map[string]string{"genre": "Fiction"}, p.Filters)
}

func TestSkip(t *testing.T) {
	p := ListParams{Page: 3, Limit: 10}
	assert.Equal(t, int64(20), p.skip())
	p = ListParams{Page: 1, Limit: 10}
	assert.Equal(t, int64(0), p.skip())
}

func TestFiltersCombineConjunctively(t *testing.T) {
	p := params(map[string]string{"genre": "Fiction", "status": "Published"})
	f, ok := bookListSpec.filter(p)
	require.True(t, ok)
	assert.Equal(t, bson.M{"genres": "Fiction", "status": "Published"}, f)
}

func TestNoParamsMeansNoConstraint(t *testing.T) {
	f, ok := bookListSpec.filter(ListParams{Filters: map[string]string{}})
	require.True(t, ok)
	assert.Empty(t, f)
}

func TestSearchMatchesDeclaredFieldsOnly(t *testing.T) {
	p := params(map[string]string{"search": "dune"})
	f, ok := bookListSpec.filter(p)
	require.True(t, ok)
	or, isOr := f["$or"].([]bson.M)
	require.True(t, isOr)
	require.Len(t, or, 2)
	assert.Contains(t, or[0], "title")
	assert.Contains(t, or[1], "description")
}

func TestSearchQuotesRegexMetacharacters(t *testing.T) {
	p := params(map[string]string{"search": "c++ (2nd ed.)"})
	f, ok := bookListSpec.filter(p)
	require.True(t, ok)
	or := f["$or"].([]bson.M)
	pattern := or[0]["title"].(bson.M)["$regex"].(string)
	assert.Equal(t, `c\+\+ \(2nd ed\.\)`, pattern)
}

func TestReferenceFilterParsesObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	p := params(map[string]string{"author": id.Hex()})
	f, ok := bookListSpec.filter(p)
	require.True(t, ok)
	assert.Equal(t, id, f["authorId"])
}

func TestMalformedReferenceMatchesNothing(t *testing.T) {
	p := params(map[string]string{"author": "not-a-hex-id"})
	_, ok := bookListSpec.filter(p)
	assert.False(t, ok)
}

func TestReviewTargetFilterConstrainsKind(t *testing.T) {
	id := primitive.NewObjectID()
	p := params(map[string]string{"book": id.Hex()})
	f, ok := reviewListSpec.filter(p)
	require.True(t, ok)
	assert.Equal(t, id, f["targetId"])
	assert.Equal(t, "book", f["targetKind"])
}

func TestConflictingTargetFiltersMatchNothing(t *testing.T) {
	p := params(map[string]string{
		"book":   primitive.NewObjectID().Hex(),
		"author": primitive.NewObjectID().Hex(),
	})
	_, ok := reviewListSpec.filter(p)
	assert.False(t, ok)
}

func TestRatingFilterIsNumeric(t *testing.T) {
	p := params(map[string]string{"rating": "4"})
	f, ok := reviewListSpec.filter(p)
	require.True(t, ok)
	assert.Equal(t, 4, f["rating"])

	p = params(map[string]string{"rating": "four"})
	_, ok = reviewListSpec.filter(p)
	assert.False(t, ok)
}

func TestFoundedAfterIsStrictlyGreater(t *testing.T) {
	p := params(map[string]string{"foundedAfter": "1900"})
	f, ok := publisherListSpec.filter(p)
	require.True(t, ok)
	assert.Equal(t, bson.M{"$gt": 1900}, f["foundedYear"])
}

func TestNationalityFilterAppliesToAuthorsOnly(t *testing.T) {
	p := params(map[string]string{"nationality": "British"})
	f, ok := authorListSpec.filter(p)
	require.True(t, ok)
	assert.Equal(t, "British", f["nationality"])

	// Books ignore the parameter entirely.
	f, ok = bookListSpec.filter(p)
	require.True(t, ok)
	assert.Empty(t, f)
}

func TestSortAllowListAndFallback(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      bson.D
	}{
		{"known ascending default", "title", "", bson.D{{Key: "title", Value: 1}}},
		{"known descending", "title", "desc", bson.D{{Key: "title", Value: -1}}},
		{"case-insensitive order", "price", "DESC", bson.D{{Key: "price", Value: -1}}},
		{"unknown falls back", "s3Key", "asc", bookListSpec.defaultSort},
		{"empty falls back", "", "", bookListSpec.defaultSort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bookListSpec.sort(ListParams{SortBy: tt.sortBy, SortOrder: tt.sortOrder})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name         string
		page, limit  int
		count        int
		totalMatches int64
		want         Pagination
	}{
		{"exact pages", 1, 2, 2, 4, Pagination{Current: 1, Total: 2, Count: 2}},
		{"partial last page", 2, 2, 1, 3, Pagination{Current: 2, Total: 2, Count: 1}},
		{"beyond last page", 9, 2, 0, 3, Pagination{Current: 9, Total: 2, Count: 0}},
		{"no matches", 1, 10, 0, 0, Pagination{Current: 1, Total: 0, Count: 0}},
		{"single page", 1, 100, 7, 7, Pagination{Current: 1, Total: 1, Count: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.limit, tt.count, tt.totalMatches)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Paging through every page must cover each match exactly once: the
// skip windows tile [0, totalMatches) without gaps or overlap.
func TestPageWindowsTileTheResultSet(t *testing.T) {
	const totalMatches = 23
	const limit = 5
	meta := NewPagination(1, limit, limit, totalMatches)

	covered := 0
	for page := 1; page <= meta.Total; page++ {
		p := ListParams{Page: page, Limit: limit}
		start := int(p.skip())
		end := start + limit
		if end > totalMatches {
			end = totalMatches
		}
		assert.Equal(t, covered, start, "page %d must start where the previous ended", page)
		covered = end
	}
	assert.Equal(t, totalMatches, covered)
}
