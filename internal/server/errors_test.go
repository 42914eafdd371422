package server

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", &ErrInvalidInput{Field: "text", Message: "required"}, http.StatusBadRequest},
		{"not ready", &ErrNotReady{JobID: "j1", Status: "streaming"}, http.StatusBadRequest},
		{"not found", &ErrJobNotFound{JobID: "j1"}, http.StatusNotFound},
		{"upstream", &ErrUpstream{Op: "synthesis", Cause: errors.New("boom")}, http.StatusBadGateway},
		{"unknown", errors.New("anything"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrUpstreamUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ErrUpstream{Op: "generation", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected ErrUpstream to unwrap to its cause")
	}
}
