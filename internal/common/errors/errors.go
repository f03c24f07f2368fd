// Package errors provides the standardized error type used between the API
// client and the view controller.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// ErrCodeTransportFailed covers connection failures, timeouts and
	// cancelled requests.
	ErrCodeTransportFailed ErrorCode = "TRANSPORT_FAILED"
	// ErrCodeResponseInvalid covers bodies that are not JSON or do not have
	// the expected shape.
	ErrCodeResponseInvalid ErrorCode = "RESPONSE_INVALID"
	// ErrCodeRequestRejected is an application-level rejection: the server
	// answered with a non-2xx status.
	ErrCodeRequestRejected ErrorCode = "REQUEST_REJECTED"
	ErrCodeRequestBuildFailed ErrorCode = "REQUEST_BUILD_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	HTTPStatus int                    `json:"httpStatus,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewTransportError wraps a failure to reach the server or read its reply.
func NewTransportError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailed,
		Message:   fmt.Sprintf("request to %s failed", endpoint),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"endpoint": endpoint},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewResponseInvalidError reports a body that could not be decoded.
func NewResponseInvalidError(endpoint string, status int, err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeResponseInvalid,
		Message:    fmt.Sprintf("invalid response from %s", endpoint),
		Details:    err.Error(),
		Retryable:  false,
		HTTPStatus: status,
		Metadata:   map[string]interface{}{"endpoint": endpoint},
		Timestamp:  time.Now().UTC(),
		cause:      err,
	}
}

// NewRejectedError reports a non-ok response. detail is the server-supplied
// detail text and may be empty.
func NewRejectedError(endpoint string, status int, detail string) *StandardError {
	return &StandardError{
		Code:       ErrCodeRequestRejected,
		Message:    fmt.Sprintf("%s rejected the request (status %d)", endpoint, status),
		Details:    detail,
		Retryable:  false,
		HTTPStatus: status,
		Metadata:   map[string]interface{}{"endpoint": endpoint},
		Timestamp:  time.Now().UTC(),
	}
}

func NewRequestBuildError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestBuildFailed,
		Message:   fmt.Sprintf("failed to build request for %s", endpoint),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"endpoint": endpoint},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// AsStandardError extracts a *StandardError from err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRejection reports whether err is an application-level rejection and
// returns it.
func IsRejection(err error) (*StandardError, bool) {
	stdErr, ok := AsStandardError(err)
	if !ok || stdErr.Code != ErrCodeRequestRejected {
		return nil, false
	}
	return stdErr, true
}

// IsTransport reports whether err is a transport or parse failure. Errors
// that are not StandardErrors count as transport failures.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	stdErr, ok := AsStandardError(err)
	if !ok {
		return true
	}
	return stdErr.Code != ErrCodeRequestRejected
}

// Code returns err's code, or "UNKNOWN_ERROR".
func Code(err error) string {
	if stdErr, ok := AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}
