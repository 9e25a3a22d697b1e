package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates that a uniqueness constraint was violated.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets.
type Type int

const (
	// TypeServer represents infrastructure failures.
	TypeServer Type = iota
	// TypeBusiness represents rule violations in the authentication lifecycle.
	TypeBusiness
	// TypeValidation represents malformed or missing input.
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier of a failure kind. The router maps it to an
// HTTP status.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeUnauthorized
	CodeForbidden
	CodeInvalidCredentials
	CodeInvalidOTP
	CodeExpiredOTP
	CodeNoPendingOTP
	CodePrecondition
	CodeNotActive
	CodeUnavailable
)

var codeNames = map[Code]string{
	CodeInternal:           "ERROR_CODE_INTERNAL",
	CodeInvalidFormat:      "ERROR_CODE_INVALID_FORMAT",
	CodeInvalidInput:       "ERROR_CODE_INVALID_INPUT",
	CodeNotFound:           "ERROR_CODE_NOT_FOUND",
	CodeConflict:           "ERROR_CODE_CONFLICT",
	CodeUnauthorized:       "ERROR_CODE_UNAUTHORIZED",
	CodeForbidden:          "ERROR_CODE_FORBIDDEN",
	CodeInvalidCredentials: "ERROR_CODE_INVALID_CREDENTIALS",
	CodeInvalidOTP:         "ERROR_CODE_INVALID_OTP",
	CodeExpiredOTP:         "ERROR_CODE_EXPIRED_OTP",
	CodeNoPendingOTP:       "ERROR_CODE_NO_PENDING_OTP",
	CodePrecondition:       "ERROR_CODE_PRECONDITION_REJECTED",
	CodeNotActive:          "ERROR_CODE_NOT_ACTIVE",
	CodeUnavailable:        "ERROR_CODE_SERVICE_UNAVAILABLE",
}

var codeStatus = map[Code]int{
	CodeInternal:           http.StatusInternalServerError,
	CodeInvalidFormat:      http.StatusBadRequest,
	CodeInvalidInput:       http.StatusUnprocessableEntity,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeInvalidOTP:         http.StatusUnauthorized,
	CodeExpiredOTP:         http.StatusGone,
	CodeNoPendingOTP:       http.StatusConflict,
	CodePrecondition:       http.StatusPreconditionFailed,
	CodeNotActive:          http.StatusForbidden,
	CodeUnavailable:        http.StatusServiceUnavailable,
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[CodeInternal]
}

// Error is the structured error returned by usecases.
//
// It may wrap an underlying error while carrying a user-facing message,
// a type and a code.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Business rule violation"
	default:
		return "Internal error"
	}
}

// String returns a verbose representation for logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q err=%v", e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing message.
func (e *Error) Msg() string { return e.msg }

// Type returns the error type.
func (e *Error) Type() Type { return e.errType }

// Code returns the error code.
func (e *Error) Code() Code { return e.code }

// Fields returns per-field validation messages, if any.
func (e *Error) Fields() map[string]string { return e.fields }

func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the code to an HTTP status.
func (e *Error) StatusCode() int {
	if status, ok := codeStatus[e.code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the same request may succeed later without new
// input from the caller.
func (e *Error) Retryable() bool {
	return e.code == CodeUnavailable
}

// CodeOf extracts the code of err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.code
	}
	return CodeInternal
}

func build(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer wraps an unexpected infrastructure failure.
func NewServer(err error) error {
	return build(err, "Internal server error", TypeServer, CodeInternal)
}

// NewUnavailable wraps a dependency outage the caller may retry.
func NewUnavailable(err error, msg string) error {
	return build(err, msg, TypeServer, CodeUnavailable)
}

// NewBusiness creates a lifecycle rule violation with the given message and code.
func NewBusiness(msg string, code Code) error {
	return build(nil, msg, TypeBusiness, code)
}

// NewInvalidInput creates a validation error from a validator error, or from
// key/value pairs of field and message when err is nil.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return build(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return build(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	out := &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		out.fields[kv[i]] = kv[i+1]
	}

	return out
}

// NewInvalidFormat creates an error for an unparsable request body.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return build(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}
	return build(nil, msgs[0], TypeValidation, CodeInvalidFormat)
}
