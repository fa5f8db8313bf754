package srvcerror

import (
	"errors"
	"net/http"
)

// Error is the failure variant of every remote call and of client-side checks.
// The message is safe to show to the user; debug info is not.
type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging

	httpStatus int // optional, 0 when the request never reached the backend
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) Unwrap() error {
	return e.dbgInfoErr
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

// HasCode reports whether err is (or wraps) an *Error with the given code.
func HasCode(err error, code string) bool {
	var srvcErr *Error
	if errors.As(err, &srvcErr) {
		return srvcErr.errorCode == code
	}
	return false
}

const ErrCodeNetwork = "network_error"

func ErrNetwork() *Error {
	return New(
		ErrCodeNetwork,
		"network error, please check your connection",
	)
}

const ErrCodeInternal = "internal_error"

func ErrInternal() *Error {
	return New(
		ErrCodeInternal,
		"something went wrong",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

const ErrCodeUnauthorized = "unauthorized"

func ErrUnauthorized() *Error {
	return New(
		ErrCodeUnauthorized,
		"please log in to continue",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

const ErrCodeForbidden = "forbidden"

func ErrForbidden() *Error {
	return New(
		ErrCodeForbidden,
		"admin access required",
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeNotFound = "not_found"

func ErrNotFound(what string) *Error {
	return New(
		ErrCodeNotFound,
		what+" not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeValidation = "validation_failed"

func ErrValidation(msg string) *Error {
	return New(
		ErrCodeValidation,
		msg,
	).SetHttpStatusCode(http.StatusBadRequest)
}
