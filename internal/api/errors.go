package api

import "fmt"

// NetworkError is a transport failure or a non-success HTTP status on any
// backend call. It is surfaced to the operator and never silently retried.
type NetworkError struct {
	Op     string // which call failed: "load images", "predict", "feedback", "fetch asset"
	Status int    // HTTP status, 0 on transport failure
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError is a well-formed HTTP success whose body is missing or
// malforms an expected field. It propagates like a NetworkError but is
// worded differently when shown.
type ValidationError struct {
	Op    string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: response missing required field %q", e.Op, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
