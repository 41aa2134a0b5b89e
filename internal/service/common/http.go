//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/oshokin/bedrock-up/internal/version"
)

// ErrBadHTTPStatus is returned when a response status is outside the 2xx range.
var ErrBadHTTPStatus = errors.New("unexpected http status")

// errURLRequired is returned when an empty URL is requested.
var errURLRequired = errors.New("url must be provided")

// NewHTTPClient returns a client with the provided overall timeout.
// A zero timeout keeps the transport defaults and never expires.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	return &http.Client{
		Timeout: timeout,
	}
}

// Get performs a GET request and checks the response status.
// On a non-2xx status the response is returned together with ErrBadHTTPStatus
// so callers can log it; the caller always owns closing a non-nil body.
func Get(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	if rawURL == "" {
		return nil, errURLRequired
	}

	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if !IsSuccessStatus(response.StatusCode) {
		return response, fmt.Errorf("%s, %s: %w", rawURL, response.Status, ErrBadHTTPStatus)
	}

	return response, nil
}

// IsSuccessStatus reports whether code is in the 2xx range.
func IsSuccessStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// IsServerError reports whether err was caused by a 5xx response or by transport.
// Client errors (4xx) will not change on retry.
func IsServerError(response *http.Response, err error) bool {
	if err == nil {
		return false
	}

	if response == nil {
		return true
	}

	return response.StatusCode >= http.StatusInternalServerError
}
