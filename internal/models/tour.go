package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"

	DefaultRatingsAverage = 4.5
)

type Tour struct {
	ID              primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Slug            string               `json:"slug" bson:"slug"`
	Duration        int                  `json:"duration" bson:"duration"`
	MaxGroupSize    int                  `json:"maxGroupSize" bson:"maxGroupSize"`
	Difficulty      Difficulty           `json:"difficulty" bson:"difficulty"`
	RatingsAverage  float64              `json:"ratingsAverage" bson:"ratingsAverage"`
	RatingsQuantity int                  `json:"ratingsQuantity" bson:"ratingsQuantity"`
	Price           float64              `json:"price" bson:"price"`
	PriceDiscount   *float64             `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty"`
	Summary         string               `json:"summary" bson:"summary"`
	Description     string               `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover      string               `json:"imageCover" bson:"imageCover"`
	Images          []string             `json:"images" bson:"images"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	StartDates      []time.Time          `json:"startDates" bson:"startDates"`
	SecretTour      bool                 `json:"secretTour" bson:"secretTour"`
	StartLocation   *Location            `json:"startLocation,omitempty" bson:"startLocation,omitempty"`
	Locations       []Location           `json:"locations" bson:"locations"`
	Guides          []primitive.ObjectID `json:"-" bson:"guides"`
	Version         int                  `json:"-" bson:"__v"`

	// Populated on read, never stored.
	GuideDetails []*UserSummary `json:"-" bson:"-"`
	Reviews      []*Review      `json:"-" bson:"-"`
}

// DurationWeeks is derived from Duration and not stored.
func (t *Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

// MarshalJSON adds the derived durationWeeks field, the populated guides when
// present, and reviews when they were loaded.
func (t Tour) MarshalJSON() ([]byte, error) {
	type tourAlias Tour
	out := struct {
		tourAlias
		DurationWeeks float64     `json:"durationWeeks"`
		Guides        interface{} `json:"guides"`
		Reviews       []*Review   `json:"reviews,omitempty"`
	}{
		tourAlias:     tourAlias(t),
		DurationWeeks: t.DurationWeeks(),
		Reviews:       t.Reviews,
	}
	if t.GuideDetails != nil {
		out.Guides = t.GuideDetails
	} else if t.Guides != nil {
		out.Guides = t.Guides
	} else {
		out.Guides = []primitive.ObjectID{}
	}
	return json.Marshal(out)
}

func IsValidDifficulty(d string) bool {
	switch Difficulty(d) {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}
