package utils

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Query keys consumed by Sort, LimitFields and Paginate rather than Filter.
var reservedQueryKeys = map[string]bool{
	"page":   true,
	"sort":   true,
	"fields": true,
	"limit":  true,
}

var operatorKey = regexp.MustCompile(`^([^\[\]]+)\[(gte|gt|lte|lt)\]$`)

// APIFeatures turns a request query string into the parts of a MongoDB find:
// filter, sort, projection and skip/limit. It performs no I/O.
type APIFeatures struct {
	query    url.Values
	maxLimit int

	filter     bson.M
	sort       bson.D
	projection bson.M
	skip       int64
	limit      int64
	paginated  bool
}

// NewAPIFeatures builds a query builder. maxLimit is both the default page
// size and the upper bound for limit; values below 1 fall back to
// DefaultMaxResults.
func NewAPIFeatures(query url.Values, maxLimit int) *APIFeatures {
	if maxLimit < 1 {
		maxLimit = DefaultMaxResults
	}
	if query == nil {
		query = url.Values{}
	}
	return &APIFeatures{
		query:    query,
		maxLimit: maxLimit,
		filter:   bson.M{},
	}
}

// Filter converts every non-reserved query key into a condition. Keys that
// would land in the filter as MongoDB operators ($where, a.$ne) are dropped.
//
//	duration=5            {duration: 5}
//	price[gte]=100        {price: {$gte: 100}}
//	difficulty=easy&difficulty=medium  {difficulty: {$in: [easy, medium]}}
func (f *APIFeatures) Filter() *APIFeatures {
	filter := bson.M{}

	keys := make([]string, 0, len(f.query))
	for k := range f.query {
		if !reservedQueryKeys[k] && !isOperatorKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		values := f.query[key]
		if len(values) == 0 {
			continue
		}

		if m := operatorKey.FindStringSubmatch(key); m != nil {
			field, op := m[1], "$"+m[2]
			ops, ok := filter[field].(bson.M)
			if !ok {
				ops = bson.M{}
				if existing, present := filter[field]; present {
					ops["$eq"] = existing
				}
				filter[field] = ops
			}
			ops[op] = coerceQueryValue(values[0])
			continue
		}

		var cond interface{}
		if len(values) > 1 {
			in := make(bson.A, 0, len(values))
			for _, v := range values {
				in = append(in, coerceQueryValue(v))
			}
			cond = bson.M{"$in": in}
		} else {
			cond = coerceQueryValue(values[0])
		}

		if ops, ok := filter[key].(bson.M); ok {
			if in, isIn := cond.(bson.M); isIn {
				ops["$in"] = in["$in"]
			} else {
				ops["$eq"] = cond
			}
			continue
		}
		filter[key] = cond
	}

	f.filter = filter
	return f
}

// Sort reads a comma separated field list; a leading "-" sorts descending.
// Without a sort key results come newest first.
func (f *APIFeatures) Sort() *APIFeatures {
	f.sort = bson.D{}
	for _, field := range splitList(f.query.Get("sort")) {
		dir := 1
		if strings.HasPrefix(field, "-") {
			dir = -1
			field = strings.TrimPrefix(field, "-")
		}
		if field == "" {
			continue
		}
		f.sort = append(f.sort, bson.E{Key: field, Value: dir})
	}
	if len(f.sort) == 0 {
		f.sort = bson.D{{Key: DefaultSortField, Value: -1}}
	}
	return f
}

// LimitFields builds the projection. Inclusion and exclusion cannot be mixed
// in one projection, so when any field is included the exclusions other than
// _id are dropped. Without a fields key only the version marker is hidden.
func (f *APIFeatures) LimitFields() *APIFeatures {
	include := bson.M{}
	exclude := bson.M{}
	for _, field := range splitList(f.query.Get("fields")) {
		if strings.HasPrefix(field, "-") {
			if name := strings.TrimPrefix(field, "-"); name != "" {
				exclude[name] = 0
			}
			continue
		}
		include[field] = 1
	}

	switch {
	case len(include) > 0:
		if _, ok := exclude["_id"]; ok {
			include["_id"] = 0
		}
		f.projection = include
	case len(exclude) > 0:
		exclude[VersionField] = 0
		f.projection = exclude
	default:
		f.projection = bson.M{VersionField: 0}
	}
	return f
}

// Paginate computes skip and limit from page and limit. Missing, non-numeric
// or non-positive values use the defaults; limit is clamped to the maximum.
func (f *APIFeatures) Paginate() *APIFeatures {
	page := positiveInt(f.query.Get("page"), DefaultPage)
	limit := positiveInt(f.query.Get("limit"), f.maxLimit)
	if limit > f.maxLimit {
		limit = f.maxLimit
	}

	f.skip = int64(page-1) * int64(limit)
	f.limit = int64(limit)
	f.paginated = true
	return f
}

// FilterDocument returns the filter combined with base by logical AND.
// Either side may be empty.
func (f *APIFeatures) FilterDocument(base bson.M) bson.M {
	switch {
	case len(base) == 0 && len(f.filter) == 0:
		return bson.M{}
	case len(base) == 0:
		return f.filter
	case len(f.filter) == 0:
		return base
	default:
		return bson.M{"$and": bson.A{base, f.filter}}
	}
}

// FindOptions returns the options for the steps that were applied.
func (f *APIFeatures) FindOptions() *options.FindOptions {
	opts := options.Find()
	if f.sort != nil {
		opts.SetSort(f.sort)
	}
	if f.projection != nil {
		opts.SetProjection(f.projection)
	}
	if f.paginated {
		opts.SetSkip(f.skip)
		opts.SetLimit(f.limit)
	}
	return opts
}

func (f *APIFeatures) SortDocument() bson.D {
	return f.sort
}

func (f *APIFeatures) Projection() bson.M {
	return f.projection
}

func (f *APIFeatures) Skip() int64 {
	return f.skip
}

func (f *APIFeatures) Limit() int64 {
	return f.limit
}

// Select trims encoded items to the projection built by LimitFields. A
// projected document decodes into the full model, so without this the fields
// that were left out would be rendered as zero values. items must encode to a
// JSON array of objects; it is returned as is when nothing was projected.
func (f *APIFeatures) Select(items interface{}) (interface{}, error) {
	include, exclude := f.projectionKeys()
	if len(include) == 0 && len(exclude) == 0 {
		return items, nil
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var docs []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []map[string]json.RawMessage{}
	}

	for _, doc := range docs {
		for key := range doc {
			keep := !exclude[key]
			if len(include) > 0 {
				keep = include[key] || (key == "_id" && !exclude["_id"])
			}
			if !keep {
				delete(doc, key)
			}
		}
	}
	return docs, nil
}

// projectionKeys splits the projection into top-level included and excluded
// keys. The version marker is never rendered, so it does not count.
func (f *APIFeatures) projectionKeys() (include, exclude map[string]bool) {
	include = map[string]bool{}
	exclude = map[string]bool{}
	for field, v := range f.projection {
		switch v {
		case 1:
			include[strings.SplitN(field, ".", 2)[0]] = true
		case 0:
			if field != VersionField && !strings.Contains(field, ".") {
				exclude[field] = true
			}
		}
	}
	return include, exclude
}

// coerceQueryValue maps query strings onto BSON types: booleans, ObjectIDs,
// integers and floats. Anything else stays a string.
func coerceQueryValue(v string) interface{} {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if len(v) == 24 && primitive.IsValidObjectID(v) {
		id, _ := primitive.ObjectIDFromHex(v)
		return id
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if fl, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(fl) && !math.IsInf(fl, 0) {
		return fl
	}
	return v
}

func isOperatorKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".$")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
