package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APIError is a non-2xx answer from the barangay API.
type APIError struct {
	StatusCode int
	// Detail is the server's {"detail": "..."} text, when it sent one.
	Detail string
	Method string
	Path   string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("apiclient: %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("apiclient: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// UserMessage is the text shown in a screen's error state.
func (e *APIError) UserMessage() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return "You do not have access to these records."
	case e.StatusCode == http.StatusNotFound:
		return "These records could not be found on the barangay server."
	case e.StatusCode == http.StatusTooManyRequests:
		return "The barangay server is busy. Wait a moment and try again."
	case e.StatusCode >= 500:
		return "The barangay server is having trouble. Try again later."
	}
	return "The barangay server rejected the request."
}

// TransportError means no HTTP response was received.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("apiclient: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) UserMessage() string {
	if e.Timeout() {
		return "The barangay server took too long to respond. Try again."
	}
	return "Unable to reach the barangay server. Check your connection and try again."
}

// Timeout reports whether the request ran out of time.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}
