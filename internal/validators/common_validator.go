package validators

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("alpha_space", validateAlphaSpace)
	validate.RegisterValidation("difficulty", validateDifficulty)
	validate.RegisterValidation("role", validateRole)
	validate.RegisterValidation("coordinates", validateCoordinates)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, ". ")
}

// Message is the text returned to clients.
func (v ValidationErrors) Message() string {
	return "Invalid input data. " + v.Error()
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Message: err.Error()}}
	}

	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: getErrorMessage(fe),
		})
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	isString := err.Kind() == reflect.String

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Please provide a valid email"
	case "min":
		if isString {
			return fmt.Sprintf("%s must have at least %s characters", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must have at most %s characters", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", err.Field(), err.Param())
	case "eqfield":
		return "Passwords are not the same!"
	case "object_id":
		return fmt.Sprintf("Invalid %s: not an id", err.Field())
	case "alpha_space":
		return fmt.Sprintf("%s must only contain letters and spaces", err.Field())
	case "difficulty":
		return "Difficulty is either: easy, medium, difficult"
	case "role":
		return "Role is either: user, guide, lead-guide, admin"
	case "coordinates":
		return "Coordinates must be [longitude, latitude]"
	case "eq", "len":
		return fmt.Sprintf("Invalid %s", err.Field())
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return primitive.IsValidObjectID(value)
}

func validateAlphaSpace(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

func validateDifficulty(fl validator.FieldLevel) bool {
	return models.IsValidDifficulty(fl.Field().String())
}

func validateRole(fl validator.FieldLevel) bool {
	return models.IsValidRole(fl.Field().String())
}

func validateCoordinates(fl validator.FieldLevel) bool {
	coords, ok := fl.Field().Interface().([]float64)
	if !ok || len(coords) != 2 {
		return false
	}

	lng, lat := coords[0], coords[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

func IsValidObjectID(id string) bool {
	return primitive.IsValidObjectID(id)
}
