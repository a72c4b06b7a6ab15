package services

import "fmt"

// ValidationError reports missing or malformed caller input (HTTP 400)
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NotFoundError reports a referenced service or table that does not exist
// or is unusable. Kept on the 500 path to match the historical API contract.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

// ConflictError reports a scheduling overlap (HTTP 409)
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// UpstreamError reports a failure of the external tabular store (HTTP 500)
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure during %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
