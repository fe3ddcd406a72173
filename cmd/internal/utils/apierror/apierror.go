package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what services hand back to the routes layer; it is
// serialized as-is in the response body.
type ErrorResponse interface {
	error
	Code() int
}

type SimpleError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *SimpleError) Error() string { return e.Message }
func (e *SimpleError) Code() int     { return e.Status }

// RedirectError is returned by the access guard; RedirectTo is where the
// client should navigate next.
type RedirectError struct {
	Status     int    `json:"status"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to"`
}

func (e *RedirectError) Error() string { return e.Message }
func (e *RedirectError) Code() int     { return e.Status }

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type ValidationError struct {
	Status  int           `json:"status"`
	Message string        `json:"message"`
	Fields  []*FieldError `json:"fields"`
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Code() int     { return e.Status }

var (
	InternalServerError   = NewSimple(http.StatusInternalServerError, "Internal server error")
	MalformedBodyError    = NewSimple(http.StatusBadRequest, "Malformed request body")
	InvalidAuthTokenError = NewSimple(http.StatusUnauthorized, "Invalid or missing session token")
	NotFoundError         = NewSimple(http.StatusNotFound, "Resource not found")

	DayUnavailableError   = NewSimple(http.StatusUnprocessableEntity, "The selected day is not available")
	MonthOutOfRangeError  = NewSimple(http.StatusUnprocessableEntity, "Cannot navigate to a month in the past")
	RequestCancelledError = NewSimple(499, "Request cancelled")

	IDPUserNotFoundError        = NewSimple(http.StatusNotFound, "User not found")
	IDPUserNotConfirmedError    = NewSimple(http.StatusForbidden, "User has not confirmed the account yet")
	IDPCredentialsMismatchError = NewSimple(http.StatusUnauthorized, "Email or password is incorrect")
	IDPTooManyRequestsError     = NewSimple(http.StatusTooManyRequests, "Too many sign-in attempts, try again later")
)

func NewSimple(status int, message string) *SimpleError {
	return &SimpleError{Status: status, Message: message}
}

func NewInvalidParamTypeError(param, expected string) *SimpleError {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Parameter '%s' must be of type %s", param, expected))
}

func NewRedirect(status int, message, to string) *RedirectError {
	return &RedirectError{Status: status, Message: message, RedirectTo: to}
}

// FromValidationError converts validator output into a 400 listing every
// failing field with the rule it broke.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make([]*FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = &FieldError{Field: jsonName(fe), Rule: fe.Tag()}
	}
	return &ValidationError{
		Status:  http.StatusBadRequest,
		Message: "Request validation failed",
		Fields:  fields,
	}
}

func jsonName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	return strings.ToLower(name[:1]) + name[1:]
}
