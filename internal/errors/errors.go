package errors

import stderrors "errors"

// Error is the domain error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Client-facing message
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is comparisons; only the code is compared.
var (
	ErrUnauthorized         = New(CodeUnauthorized, "unauthorized")
	ErrNotFound             = New(CodeNotFound, "not found")
	ErrConflict             = New(CodeConflict, "conflict")
	ErrForbidden            = New(CodeForbidden, "forbidden")
	ErrValidation           = New(CodeValidation, "validation failed")
	ErrAlreadyAuthenticated = New(CodeAlreadyAuthenticated, "already authenticated")
)

// CodeOf extracts the code of the first domain error in err's chain.
func CodeOf(err error) Code {
	var de *Error
	if stderrors.As(err, &de) {
		return de.Code
	}
	return CodeUnknown
}

// MessageOf returns the client-facing message of err, or a generic one for
// errors outside the taxonomy.
func MessageOf(err error) string {
	var de *Error
	if stderrors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}
