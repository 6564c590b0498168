package validators

import "strings"

type CreateReviewRequest struct {
	Review string `json:"review" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Tour   string `json:"tour" validate:"omitempty,object_id"`
}

type UpdateReviewRequest struct {
	Review *string `json:"review" validate:"omitempty,min=1"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Tour   *string `json:"tour" validate:"omitempty,object_id"`
}

func ValidateReviewCreate(req *CreateReviewRequest) ValidationErrors {
	req.Review = strings.TrimSpace(req.Review)
	errors := ValidateStruct(req)
	if req.Tour == "" {
		errors = append(errors, ValidationError{
			Field:   "tour",
			Tag:     "required",
			Message: "Review must belong to a tour.",
		})
	}
	return errors
}

func ValidateReviewUpdate(req *UpdateReviewRequest) ValidationErrors {
	trimPtr(req.Review)
	return ValidateStruct(req)
}
