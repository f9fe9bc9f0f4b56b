package veridano

import "fmt"

// TransportError means the platform could not be reached at all:
// connection refused, DNS failure, or a client-side timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("veridano transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError means the platform answered with a non-success status.
// The body is retained (bounded) for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("veridano upstream error: status %d", e.StatusCode)
}
