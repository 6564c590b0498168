package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Review    string             `json:"review" bson:"review"`
	Rating    int                `json:"rating" bson:"rating"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	Tour      primitive.ObjectID `json:"tour" bson:"tour"`
	User      primitive.ObjectID `json:"-" bson:"user"`
	Version   int                `json:"-" bson:"__v"`

	Author *UserSummary `json:"user,omitempty" bson:"-"`
}

// RatingStats is the aggregate (count, mean) of a tour's reviews.
type RatingStats struct {
	Quantity int     `bson:"nRating"`
	Average  float64 `bson:"avgRating"`
}
