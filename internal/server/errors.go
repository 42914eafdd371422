package server

import (
	"fmt"
	"net/http"
)

// ErrInvalidInput indicates a malformed or incomplete creation request.
type ErrInvalidInput struct {
	Field   string
	Message string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid input: %s - %s", e.Field, e.Message)
}

// ErrJobNotFound indicates the referenced job id is unknown.
type ErrJobNotFound struct {
	JobID string
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}

// ErrNotReady indicates an operation that requires a finished transcript
// was requested before the job completed.
type ErrNotReady struct {
	JobID  string
	Status string
}

func (e *ErrNotReady) Error() string {
	return fmt.Sprintf("job %s not ready: status is %s", e.JobID, e.Status)
}

// ErrUpstream indicates the generation backend failed.
type ErrUpstream struct {
	Op    string
	Cause error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Cause)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidInput, *ErrNotReady:
		return http.StatusBadRequest
	case *ErrJobNotFound:
		return http.StatusNotFound
	case *ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
