package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request. The set is closed.
type Kind int

const (
	// KindInvalidEndpoint means the request URL could not be built.
	KindInvalidEndpoint Kind = iota + 1
	// KindMalformedResponse means the response was not usable HTTP or not JSON at all.
	KindMalformedResponse
	// KindTransport means the server could not be reached.
	KindTransport
	// KindServerStatus means the server answered outside the 2xx range.
	KindServerStatus
	// KindDecodeFailure means the JSON did not match the expected shape.
	KindDecodeFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidEndpoint:
		return "invalid_endpoint"
	case KindMalformedResponse:
		return "malformed_response"
	case KindTransport:
		return "transport"
	case KindServerStatus:
		return "server_status"
	case KindDecodeFailure:
		return "decode_failure"
	}
	return "unknown"
}

// Error is returned by every Client call that fails.
type Error struct {
	Kind       Kind
	Endpoint   string
	StatusCode int    // set for KindServerStatus
	Message    string // human-oriented detail, never contains credentials
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServerStatus:
		return fmt.Sprintf("%s %s: status %d", e.Endpoint, e.Kind, e.StatusCode)
	default:
		if e.Message == "" {
			return fmt.Sprintf("%s %s", e.Endpoint, e.Kind)
		}
		return fmt.Sprintf("%s %s: %s", e.Endpoint, e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// StatusCode returns the HTTP status carried by a KindServerStatus error.
func StatusCode(err error) (int, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindServerStatus {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// ErrRejected matches every *RejectedError.
var ErrRejected = errors.New("request rejected by server")

// RejectedError is returned when the server answers 2xx but reports
// success=false in the body. It sits outside the transport taxonomy because
// the exchange itself succeeded.
type RejectedError struct {
	Endpoint string
	Message  string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Endpoint, ErrRejected)
	}
	return fmt.Sprintf("%s: %s: %s", e.Endpoint, ErrRejected, e.Message)
}

// Is makes errors.Is(err, ErrRejected) hold.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Describe turns err into a short English sentence suitable for display.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		if rejected.Message != "" {
			return rejected.Message
		}
		return "The server refused the request."
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.Kind {
	case KindInvalidEndpoint:
		return "The server address is not valid."
	case KindMalformedResponse:
		return "The server sent an unreadable response."
	case KindTransport:
		return "The server could not be reached. Check your connection."
	case KindServerStatus:
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			return "Your session has expired. Please sign in again."
		}
		return fmt.Sprintf("The server returned an error (%d).", apiErr.StatusCode)
	case KindDecodeFailure:
		return "The server response did not have the expected format."
	}
	return err.Error()
}
