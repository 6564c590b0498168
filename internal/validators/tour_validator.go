package validators

import (
	"fmt"
	"strings"
	"time"

	"tourbook/internal/models"
)

type CreateTourRequest struct {
	Name           string            `json:"name" validate:"required,min=10,max=40,alpha_space"`
	Duration       int               `json:"duration" validate:"required,gt=0"`
	MaxGroupSize   int               `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty     string            `json:"difficulty" validate:"required,difficulty"`
	RatingsAverage *float64          `json:"ratingsAverage" validate:"omitempty,min=1,max=5"`
	Price          float64           `json:"price" validate:"required,gt=0"`
	PriceDiscount  *float64          `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary        string            `json:"summary" validate:"required"`
	Description    string            `json:"description"`
	ImageCover     string            `json:"imageCover" validate:"required"`
	Images         []string          `json:"images"`
	StartDates     []time.Time       `json:"startDates"`
	SecretTour     bool              `json:"secretTour"`
	StartLocation  *models.Location  `json:"startLocation" validate:"omitempty"`
	Locations      []models.Location `json:"locations" validate:"omitempty,dive"`
	Guides         []string          `json:"guides" validate:"omitempty,dive,object_id"`
}

// UpdateTourRequest holds a partial update; nil fields are left unchanged.
type UpdateTourRequest struct {
	Name           *string            `json:"name" validate:"omitempty,min=10,max=40,alpha_space"`
	Duration       *int               `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize   *int               `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty     *string            `json:"difficulty" validate:"omitempty,difficulty"`
	RatingsAverage *float64           `json:"ratingsAverage" validate:"omitempty,min=1,max=5"`
	Price          *float64           `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount  *float64           `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary        *string            `json:"summary" validate:"omitempty,min=1"`
	Description    *string            `json:"description"`
	ImageCover     *string            `json:"imageCover" validate:"omitempty,min=1"`
	Images         *[]string          `json:"images"`
	StartDates     *[]time.Time       `json:"startDates"`
	SecretTour     *bool              `json:"secretTour"`
	StartLocation  *models.Location   `json:"startLocation" validate:"omitempty"`
	Locations      *[]models.Location `json:"locations" validate:"omitempty,dive"`
	Guides         *[]string          `json:"guides" validate:"omitempty,dive,object_id"`
}

func ValidateTourCreate(req *CreateTourRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	req.Summary = strings.TrimSpace(req.Summary)
	req.Description = strings.TrimSpace(req.Description)

	errors := ValidateStruct(req)
	errors = append(errors, ValidatePriceDiscount(req.Price, req.PriceDiscount)...)
	return errors
}

func ValidateTourUpdate(req *UpdateTourRequest) ValidationErrors {
	trimPtr(req.Name)
	trimPtr(req.Summary)
	trimPtr(req.Description)

	return ValidateStruct(req)
}

// ValidatePriceDiscount checks that a discount stays below the price. It runs
// on create and on the merged document after an update.
func ValidatePriceDiscount(price float64, discount *float64) ValidationErrors {
	if discount == nil || *discount < price {
		return nil
	}
	return ValidationErrors{{
		Field:   "priceDiscount",
		Tag:     "lt_price",
		Value:   fmt.Sprintf("%v", *discount),
		Message: fmt.Sprintf("Discount price (%v) should be below regular price", *discount),
	}}
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
