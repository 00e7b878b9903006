package acquire

import (
	"errors"
	"fmt"
)

// fallbackMessage is shown when an error carries no text of its own.
const fallbackMessage = "fetch error"

// ErrRunning is returned by Poller.Run when a loop is already active.
var ErrRunning = errors.New("acquire: poller already running")

// TransportError is a channel-level failure of the push connection:
// handshake failure, unexpected response, or a dropped connection.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "stream: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// FetchError is a network failure or a non-2xx status during a poll.
// Status is zero for network failures.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a response body that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Message returns the user-visible text for an acquisition error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}
