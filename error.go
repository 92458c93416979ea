package kindlebeam

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be shown to (or mapped for) the user, unlike
// EINTERNAL which signals a bug or an unexpected runtime failure.
const (
	ECONFIG      = "config"      // configuration missing or invalid
	ECONFLICT    = "conflict"    // action conflicts with existing state
	EDELIVERY    = "delivery"    // delivery channel failed
	EINTERNAL    = "internal"    // unexpected internal error
	EINVALID     = "invalid"     // validation failed
	ENOTFOUND    = "not_found"   // entity does not exist
	EUNAVAILABLE = "unavailable" // required collaborator not available
	EUNPARSABLE  = "unparsable"  // content could not be parsed
)

// Error represents an application-specific error. Application errors can
// be unwrapped by the caller to extract the machine-readable code and a
// human-readable message.
type Error struct {
	// Code is machine-readable, one of the E* constants above.
	Code string

	// Message is human-readable.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("kindlebeam error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
