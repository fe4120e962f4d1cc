package store

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Page and limit bounds for list endpoints.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// filterParams are the query parameters recognized as filters. A spec
// only applies the ones it declares; the rest are ignored for that
// resource.
var filterParams = []string{
	"author", "publisher", "book", "reviewer",
	"genre", "status", "nationality", "rating", "foundedAfter",
	"language", "format",
}

// ListParams is the flat set of optional list parameters shared by
// every list endpoint. Absent filters mean no constraint; absent
// sort/page/limit mean the defaults.
type ListParams struct {
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
	Filters   map[string]string
}

// ParseListParams reads the recognized parameters from a query string,
// clamping page to >=1 and limit to [1,100]. Unknown parameters are
// ignored.
func ParseListParams(q url.Values) ListParams {
	p := ListParams{
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		SortOrder: strings.TrimSpace(q.Get("sortOrder")),
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		Filters:   map[string]string{},
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n >= 1 {
		p.Limit = n
		if p.Limit > MaxLimit {
			p.Limit = MaxLimit
		}
	}
	for _, key := range filterParams {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			p.Filters[key] = v
		}
	}
	return p
}

func (p ListParams) skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Pagination is the metadata returned with every list page.
type Pagination struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Count   int `json:"count"`
}

// NewPagination computes page metadata from the requested page, the
// page item count, and the total number of matches.
func NewPagination(page, limit, count int, totalMatches int64) Pagination {
	total := 0
	if limit > 0 {
		total = int((totalMatches + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Current: page, Total: total, Count: count}
}

// filterKind says how a filter parameter's value is matched against its
// field.
type filterKind int

const (
	filterExact  filterKind = iota // string equality
	filterMember                   // membership in an array field
	filterRef                      // ObjectID equality; malformed id matches nothing
	filterTargetRef                // review target: ObjectID equality plus target kind
	filterInt                      // integer equality
	filterMinInt                   // strictly greater than
)

type filterField struct {
	field string
	kind  filterKind
}

// listSpec fixes a resource's list semantics: which fields free-text
// search covers, which filter parameters it honors, and the sortBy
// allow-list with its default order.
type listSpec struct {
	search      []string
	filters     map[string]filterField
	sorts       map[string]string
	defaultSort bson.D
}

var bookListSpec = listSpec{
	search: []string{"title", "description"},
	filters: map[string]filterField{
		"author":    {field: "authorId", kind: filterRef},
		"publisher": {field: "publisherId", kind: filterRef},
		"genre":     {field: "genres", kind: filterMember},
		"status":    {field: "status", kind: filterExact},
		"language":  {field: "language", kind: filterExact},
		"format":    {field: "format", kind: filterExact},
	},
	sorts: map[string]string{
		"title":         "title",
		"publishDate":   "publishDate",
		"price":         "price",
		"pageCount":     "pageCount",
		"averageRating": "averageRating",
		"createdAt":     "createdAt",
	},
	defaultSort: bson.D{{Key: "createdAt", Value: -1}},
}

var authorListSpec = listSpec{
	search: []string{"firstName", "lastName", "penName", "biography"},
	filters: map[string]filterField{
		"genre":       {field: "genres", kind: filterMember},
		"status":      {field: "status", kind: filterExact},
		"nationality": {field: "nationality", kind: filterExact},
		"language":    {field: "languages", kind: filterMember},
	},
	sorts: map[string]string{
		"lastName":       "lastName",
		"firstName":      "firstName",
		"booksPublished": "booksPublished",
		"averageRating":  "averageRating",
		"createdAt":      "createdAt",
	},
	defaultSort: bson.D{{Key: "createdAt", Value: -1}},
}

var publisherListSpec = listSpec{
	search: []string{"name", "description"},
	filters: map[string]filterField{
		"genre":        {field: "genres", kind: filterMember},
		"status":       {field: "status", kind: filterExact},
		"foundedAfter": {field: "foundedYear", kind: filterMinInt},
	},
	sorts: map[string]string{
		"name":        "name",
		"foundedYear": "foundedYear",
		"createdAt":   "createdAt",
	},
	defaultSort: bson.D{{Key: "createdAt", Value: -1}},
}

var reviewListSpec = listSpec{
	search: []string{"title", "content"},
	filters: map[string]filterField{
		"book":     {field: "book", kind: filterTargetRef},
		"author":   {field: "author", kind: filterTargetRef},
		"reviewer": {field: "userId", kind: filterRef},
		"status":   {field: "status", kind: filterExact},
		"rating":   {field: "rating", kind: filterInt},
	},
	sorts: map[string]string{
		"rating":       "rating",
		"helpfulVotes": "helpfulVotes",
		"createdAt":    "createdAt",
	},
	defaultSort: bson.D{{Key: "createdAt", Value: -1}},
}

// filter builds the conjunctive bson filter for the parameters the spec
// recognizes. The second return value is false when a parameter value
// can never match anything (malformed ObjectID, non-numeric number), in
// which case the caller returns an empty page instead of erroring.
func (s listSpec) filter(p ListParams) (bson.M, bool) {
	f := bson.M{}
	if p.Search != "" && len(s.search) > 0 {
		or := make([]bson.M, 0, len(s.search))
		for _, field := range s.search {
			or = append(or, bson.M{field: bson.M{
				"$regex":   regexp.QuoteMeta(p.Search),
				"$options": "i",
			}})
		}
		f["$or"] = or
	}
	for param, ff := range s.filters {
		raw, ok := p.Filters[param]
		if !ok {
			continue
		}
		switch ff.kind {
		case filterExact, filterMember:
			f[ff.field] = raw
		case filterRef:
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return nil, false
			}
			f[ff.field] = id
		case filterTargetRef:
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return nil, false
			}
			if _, dup := f["targetId"]; dup {
				// a review targets exactly one entity, so two target
				// filters can never both hold
				return nil, false
			}
			f["targetId"] = id
			f["targetKind"] = ff.field
		case filterInt:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, false
			}
			f[ff.field] = n
		case filterMinInt:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, false
			}
			f[ff.field] = bson.M{"$gt": n}
		}
	}
	return f, true
}

// sort returns the sort order for the request. Unknown or absent sortBy
// falls back to the resource's default order instead of erroring.
func (s listSpec) sort(p ListParams) bson.D {
	field, ok := s.sorts[p.SortBy]
	if !ok {
		return s.defaultSort
	}
	dir := 1
	if strings.EqualFold(p.SortOrder, "desc") {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}}
}

// listPage runs the filter/sort/page query against a collection and
// returns one page with its metadata. A page past the end returns an
// empty item list with the correct total.
func listPage[T any](ctx context.Context, coll *mongo.Collection, spec listSpec, p ListParams) ([]T, Pagination, error) {
	filter, matchable := spec.filter(p)
	if !matchable {
		return []T{}, NewPagination(p.Page, p.Limit, 0, 0), nil
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}
	opts := options.Find().
		SetSort(spec.sort(p)).
		SetSkip(p.skip()).
		SetLimit(int64(p.Limit))
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer cur.Close(ctx)
	items := []T{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, Pagination{}, err
	}
	return items, NewPagination(p.Page, p.Limit, len(items), total), nil
}
