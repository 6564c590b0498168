package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseFromURI(t *testing.T) {
	cases := map[string]string{
		"mongodb://localhost:27017/tourbook":                              "tourbook",
		"mongodb+srv://u:p@cluster0.example.net/natours?retryWrites=true": "natours",
		"mongodb://localhost:27017":                                       "",
		"mongodb://localhost:27017/":                                      "",
	}
	for uri, want := range cases {
		assert.Equal(t, want, databaseFromURI(uri), uri)
	}
}
