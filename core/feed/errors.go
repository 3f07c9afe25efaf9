package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrInFlight is returned when a sync is requested while another one is running.
	ErrInFlight = errors.New("sync already in flight")

	// ErrClosed is returned by a controller after Close.
	ErrClosed = errors.New("sync controller closed")
)

// NetworkError is a transport failure or a non-success response from the feed.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FormatError is a feed body that does not have the expected shape.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected data format: %s: %v", e.Reason, e.Err)
	}
	return "unexpected data format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }
