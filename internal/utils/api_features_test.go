package utils

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return q
}

func TestAPIFeatures_Paginate(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantSkip  int64
		wantLimit int64
	}{
		{"defaults", "", 0, 100},
		{"page and limit", "page=3&limit=10", 20, 10},
		{"first page", "page=1&limit=5", 0, 5},
		{"non numeric page", "page=abc&limit=10", 0, 10},
		{"zero page", "page=0&limit=10", 0, 10},
		{"negative limit", "page=2&limit=-4", 100, 100},
		{"limit above max is clamped", "limit=1000", 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewAPIFeatures(mustQuery(t, tt.query), 100).Paginate()
			assert.Equal(t, tt.wantSkip, f.Skip())
			assert.Equal(t, tt.wantLimit, f.Limit())

			opts := f.FindOptions()
			require.NotNil(t, opts.Skip)
			require.NotNil(t, opts.Limit)
			assert.Equal(t, tt.wantSkip, *opts.Skip)
			assert.Equal(t, tt.wantLimit, *opts.Limit)
		})
	}
}

func TestAPIFeatures_DefaultLimitFallback(t *testing.T) {
	f := NewAPIFeatures(nil, 0).Paginate()
	assert.Equal(t, int64(DefaultMaxResults), f.Limit())
	assert.Equal(t, int64(0), f.Skip())
}

func TestAPIFeatures_Filter(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name  string
		query string
		want  bson.M
	}{
		{
			name:  "operator",
			query: "price[gte]=100",
			want:  bson.M{"price": bson.M{"$gte": int64(100)}},
		},
		{
			name:  "plain equality",
			query: "difficulty=easy&duration=5",
			want:  bson.M{"difficulty": "easy", "duration": int64(5)},
		},
		{
			name:  "reserved keys removed",
			query: "page=2&sort=price&limit=3&fields=name&difficulty=easy",
			want:  bson.M{"difficulty": "easy"},
		},
		{
			name:  "operators on one field merge",
			query: "price[gte]=100&price[lt]=500.5",
			want:  bson.M{"price": bson.M{"$gte": int64(100), "$lt": 500.5}},
		},
		{
			name:  "equality and operator on one field",
			query: "duration=5&duration[lte]=9",
			want:  bson.M{"duration": bson.M{"$eq": int64(5), "$lte": int64(9)}},
		},
		{
			name:  "unknown bracket suffix is a literal field",
			query: "price[ne]=3",
			want:  bson.M{"price[ne]": int64(3)},
		},
		{
			name:  "repeated key becomes in",
			query: "difficulty=easy&difficulty=medium",
			want:  bson.M{"difficulty": bson.M{"$in": bson.A{"easy", "medium"}}},
		},
		{
			name:  "booleans and object ids",
			query: "secretTour=false&guides=" + id.Hex(),
			want:  bson.M{"secretTour": false, "guides": id},
		},
		{
			name:  "operator keys are dropped",
			query: "$where=sleep(5000)||true&difficulty=easy",
			want:  bson.M{"difficulty": "easy"},
		},
		{
			name:  "nested operator keys are dropped",
			query: "price.$ne=1&$or[gt]=2&name=x",
			want:  bson.M{"name": "x"},
		},
		{
			name:  "empty",
			query: "",
			want:  bson.M{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewAPIFeatures(mustQuery(t, tt.query), 100).Filter()
			assert.Equal(t, tt.want, f.FilterDocument(nil))
		})
	}
}

func TestAPIFeatures_FilterDocumentCombinesBase(t *testing.T) {
	base := bson.M{"secretTour": bson.M{"$ne": true}}

	f := NewAPIFeatures(mustQuery(t, "price[lt]=10"), 100).Filter()
	assert.Equal(t, bson.M{"$and": bson.A{base, bson.M{"price": bson.M{"$lt": int64(10)}}}}, f.FilterDocument(base))

	empty := NewAPIFeatures(mustQuery(t, "sort=name"), 100).Filter()
	assert.Equal(t, base, empty.FilterDocument(base))
}

func TestAPIFeatures_Sort(t *testing.T) {
	f := NewAPIFeatures(mustQuery(t, "sort=-price,name"), 100).Sort()
	assert.Equal(t, bson.D{{Key: "price", Value: -1}, {Key: "name", Value: 1}}, f.SortDocument())

	f = NewAPIFeatures(mustQuery(t, ""), 100).Sort()
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, f.SortDocument())

	f = NewAPIFeatures(mustQuery(t, "sort=,-,"), 100).Sort()
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, f.SortDocument())
}

func TestAPIFeatures_LimitFields(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bson.M
	}{
		{"default hides version", "", bson.M{"__v": 0}},
		{"inclusion", "fields=name,price", bson.M{"name": 1, "price": 1}},
		{"exclusion", "fields=-summary", bson.M{"summary": 0, "__v": 0}},
		{"inclusion drops exclusions except id", "fields=name,-summary,-_id", bson.M{"name": 1, "_id": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewAPIFeatures(mustQuery(t, tt.query), 100).LimitFields()
			assert.Equal(t, tt.want, f.Projection())
		})
	}
}

func TestAPIFeatures_FindOptionsOnlyAppliedSteps(t *testing.T) {
	opts := NewAPIFeatures(mustQuery(t, "page=2"), 10).Filter().FindOptions()
	assert.Nil(t, opts.Sort)
	assert.Nil(t, opts.Projection)
	assert.Nil(t, opts.Skip)
	assert.Nil(t, opts.Limit)

	opts = NewAPIFeatures(mustQuery(t, "page=2"), 10).Filter().Sort().LimitFields().Paginate().FindOptions()
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, opts.Sort)
	assert.Equal(t, bson.M{"__v": 0}, opts.Projection)
	assert.Equal(t, int64(10), *opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)
}

type selectDoc struct {
	ID      string  `json:"_id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Summary string  `json:"summary"`
}

func selectKeys(t *testing.T, query string, items interface{}) []map[string]interface{} {
	t.Helper()
	selected, err := NewAPIFeatures(mustQuery(t, query), 100).LimitFields().Select(items)
	require.NoError(t, err)

	raw, err := json.Marshal(selected)
	require.NoError(t, err)
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestAPIFeatures_Select(t *testing.T) {
	docs := []selectDoc{{ID: "a1", Name: "The Forest Hiker", Price: 397, Summary: "s"}}

	t.Run("inclusion keeps only selected fields and id", func(t *testing.T) {
		out := selectKeys(t, "fields=name,price", docs)
		require.Len(t, out, 1)
		assert.Equal(t, map[string]interface{}{"_id": "a1", "name": "The Forest Hiker", "price": 397.0}, out[0])
	})

	t.Run("inclusion without id", func(t *testing.T) {
		out := selectKeys(t, "fields=name,-_id", docs)
		assert.Equal(t, []map[string]interface{}{{"name": "The Forest Hiker"}}, out)
	})

	t.Run("exclusion drops fields", func(t *testing.T) {
		out := selectKeys(t, "fields=-summary,-price", docs)
		assert.Equal(t, []map[string]interface{}{{"_id": "a1", "name": "The Forest Hiker"}}, out)
	})

	t.Run("nested inclusion keeps the parent", func(t *testing.T) {
		out := selectKeys(t, "fields=name.first", docs)
		assert.Equal(t, []map[string]interface{}{{"_id": "a1", "name": "The Forest Hiker"}}, out)
	})

	t.Run("no projection returns items unchanged", func(t *testing.T) {
		selected, err := NewAPIFeatures(mustQuery(t, ""), 100).LimitFields().Select(docs)
		require.NoError(t, err)
		assert.Equal(t, docs, selected)
	})

	t.Run("empty list stays a list", func(t *testing.T) {
		out := selectKeys(t, "fields=name", []selectDoc(nil))
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}
