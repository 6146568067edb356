// Package errors provides the error taxonomy shared by the store, the
// session authority and the HTTP handlers.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unexpected failure.
	CodeUnknown Code = "UNKNOWN"

	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeNotFound             Code = "NOT_FOUND"
	CodeConflict             Code = "CONFLICT"
	CodeForbidden            Code = "FORBIDDEN"
	CodeValidation           Code = "VALIDATION"
	CodeAlreadyAuthenticated Code = "ALREADY_AUTHENTICATED"
)

// HTTPStatus returns the default HTTP status for the code.
// Routes that document a different status for NotFound override it.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict, CodeValidation, CodeAlreadyAuthenticated:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
