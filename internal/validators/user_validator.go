package validators

import (
	"strings"
)

type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=20"`
	Email           string `json:"email" validate:"required,email"`
	Photo           string `json:"photo"`
	Role            string `json:"role" validate:"omitempty,role"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// UpdateMeRequest is the self-service profile update. Password fields are
// decoded only so they can be rejected.
type UpdateMeRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=20"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"passwordConfirm"`
}

// UpdateUserRequest is the admin update.
type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=20"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Photo  *string `json:"photo" validate:"omitempty,min=1"`
	Role   *string `json:"role" validate:"omitempty,role"`
	Active *bool   `json:"active"`
}

func ValidateSignup(req *SignupRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	return ValidateStruct(req)
}

func ValidateForgotPassword(req *ForgotPasswordRequest) ValidationErrors {
	req.Email = normalizeEmail(req.Email)
	return ValidateStruct(req)
}

func ValidateResetPassword(req *ResetPasswordRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidatePasswordUpdate(req *UpdatePasswordRequest) ValidationErrors {
	return ValidateStruct(req)
}

func ValidateUpdateMe(req *UpdateMeRequest) ValidationErrors {
	trimPtr(req.Name)
	if req.Email != nil {
		*req.Email = normalizeEmail(*req.Email)
	}
	return ValidateStruct(req)
}

func ValidateUserUpdate(req *UpdateUserRequest) ValidationErrors {
	trimPtr(req.Name)
	if req.Email != nil {
		*req.Email = normalizeEmail(*req.Email)
	}
	return ValidateStruct(req)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
