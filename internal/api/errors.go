package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is the normalized shape of every transport failure.
// Status is 0 when no response was received (network failure).
type Error struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network failure: %s", e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// ValidationError is raised client-side before any request is issued.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

const defaultErrorMessage = "Request failed"

// errorBody is the subset of backend error payloads we read a message from.
type errorBody struct {
	Message *string `json:"message"`
	Detail  *string `json:"detail"`
}

// normalize builds an *Error from a response status and body, or from a
// transport error when no response arrived.
func normalize(status int, body []byte, cause error) *Error {
	e := &Error{Status: status}
	if len(body) > 0 && json.Valid(body) {
		e.Data = json.RawMessage(body)
	}

	var eb errorBody
	if len(body) > 0 {
		_ = json.Unmarshal(body, &eb)
	}
	switch {
	case eb.Message != nil && *eb.Message != "":
		e.Message = *eb.Message
	case eb.Detail != nil && *eb.Detail != "":
		e.Message = *eb.Detail
	case cause != nil && cause.Error() != "":
		e.Message = cause.Error()
	default:
		e.Message = defaultErrorMessage
	}
	return e
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

func IsNotFound(err error) bool     { return StatusOf(err) == http.StatusNotFound }
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsNetworkFailure reports whether err is a transport error with no response.
func IsNetworkFailure(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == 0
}

// IsValidation reports whether err was rejected client-side.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
