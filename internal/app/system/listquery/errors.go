package listquery

import (
	"context"
	"errors"
)

// ErrClosed is returned by Start on a controller that has been closed.
var ErrClosed = errors.New("listquery: controller closed")

// userMessager is implemented by errors that carry text fit to show a
// resident or staff member.
type userMessager interface {
	UserMessage() string
}

// Message converts a fetch error into text for the error state.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The server took too long to respond. Try again."
	}
	return "Unable to load records. Try again."
}
