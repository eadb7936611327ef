package apiclient

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
)

// APIError is returned for every non-2xx response from the API
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.Status, msg, e.Err)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an APIError
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the API's message for err, falling back to the given text
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
