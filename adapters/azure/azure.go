// Package azure implements the speech service adapters over the Azure
// Cognitive Services REST APIs: custom voice enrollment, short-audio speech
// recognition, and speech synthesis.
package azure

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"
	defaultHTTPTimeout    = 60 * time.Second
)

// ServiceError is a non-success HTTP status returned by the speech service
// on a synchronous call. It is a different failure than not reaching the
// service at all.
type ServiceError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("speech service returned %d for %s: %s", e.StatusCode, e.Endpoint, e.Body)
	}
	return fmt.Sprintf("speech service returned %d for %s", e.StatusCode, e.Endpoint)
}

// IsServiceError reports whether err is (or wraps) a ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
