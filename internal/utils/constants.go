package utils

import "time"

const (
	AppName = "Tourbook"

	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"

	// Query builder
	DefaultPage          = 1
	DefaultMaxResults    = 100
	DefaultSortField     = "createdAt"
	VersionField         = "__v"
	PasswordResetBytes   = 32
	PasswordMinLength    = 8
	DefaultTokenTTL      = 90 * 24 * time.Hour
	DefaultResetTokenTTL = 10 * time.Minute

	// Images
	UserPhotoSize   = 500
	TourCoverWidth  = 2000
	TourCoverHeight = 1333
	JPEGQuality     = 90
	MaxUploadBytes  = 5 << 20
)

// Context keys set by middleware.
const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"
)

// Messages shared between layers.
const (
	ErrMsgInternal          = "Something went very wrong!"
	ErrMsgNotLoggedIn       = "You are not logged in! Please log in to get access."
	ErrMsgUserGone          = "The user belonging to this token no longer exists."
	ErrMsgPasswordChanged   = "User recently changed password! Please log in again."
	ErrMsgNoPermission      = "You do not have permission to perform this action"
	ErrMsgInvalidToken      = "Invalid token. Please log in again!"
	ErrMsgExpiredToken      = "Your token has expired! Please log in again."
	ErrMsgInvalidResetToken = "Token is invalid or has expired"
	ErrMsgTooManyRequests   = "Too many requests from this IP, please try again in an hour!"
	ErrMsgBodyTooLarge      = "Request body too large"
	ErrMsgInvalidID         = "Invalid id"
)

var AllowedImageTypes = []string{".jpg", ".jpeg", ".png", ".gif"}
