package interfaces

import "errors"

// ErrNotFound is returned when no document matches. Secret tours and inactive
// users are reported as not found.
var ErrNotFound = errors.New("document not found")
