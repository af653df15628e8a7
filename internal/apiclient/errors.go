package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// KindNetwork: the request never reached the server or the response could not be read.
	KindNetwork ErrorKind = iota + 1
	// KindHTTPStatus: the server answered with a non-success status.
	KindHTTPStatus
	// KindDecode: the server answered with JSON that could not be decoded.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the single failure type returned by Client.
type Error struct {
	Kind    ErrorKind
	Status  int
	Body    json.RawMessage
	Method  string
	Path    string
	Wrapped error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message(""))
	case KindDecode:
		return fmt.Sprintf("%s %s: decode response: %v", e.Method, e.Path, e.Wrapped)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Wrapped)
	}
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Message returns the server-provided error text, falling back when the body
// carries none.
func (e *Error) Message(fallback string) string {
	if e == nil || len(e.Body) == 0 {
		return fallback
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return fallback
	}
	if body.Error != "" {
		return body.Error
	}
	if body.Message != "" {
		return body.Message
	}
	return fallback
}

// IsStatus reports whether err is an HTTP status failure with the given code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindHTTPStatus && apiErr.Status == status
}

// UserMessage is the text shown for a failed action: the server's own message
// for application failures, the fallback for everything else.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindHTTPStatus {
		return apiErr.Message(fallback)
	}
	return fallback
}
