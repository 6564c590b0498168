package mocks

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// clone copies a document through its BSON form, dropping bson:"-" fields
// the same way a database round trip would.
func clone[T any](v *T) *T {
	data, err := bson.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("mocks: marshal %T: %v", v, err))
	}
	var out T
	if err := bson.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("mocks: unmarshal %T: %v", v, err))
	}
	return &out
}

// applySet applies a $set document to v.
func applySet[T any](v *T, set bson.M) (*T, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for k, val := range set {
		doc[k] = val
	}
	if data, err = bson.Marshal(doc); err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// duplicateKeyError mimics the server error for a unique index violation.
func duplicateKeyError(index string, keys bson.M) error {
	parts := make([]string, 0, len(keys))
	for k, v := range keys {
		parts = append(parts, fmt.Sprintf("%s: %q", k, fmt.Sprint(v)))
	}
	sort.Strings(parts)
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: fmt.Sprintf("E11000 duplicate key error collection: test index: %s dup key: { %s }", index, strings.Join(parts, ", ")),
		}},
	}
}

// page applies skip and limit to a sorted slice.
func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}
