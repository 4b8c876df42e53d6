package httpclient

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// StatusError reports a non-2xx response. The catalog API has no documented
// error body, so the status code is the whole signal; a short body excerpt is
// kept for logs only.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap maps the status onto the shared sentinels so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.StatusCode == http.StatusBadRequest:
		return apperrors.ErrInvalidInput
	case e.StatusCode >= 500:
		return apperrors.ErrServiceUnavail
	default:
		return nil
	}
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// returns a *StatusError describing it.
func ParseResponseError(resp *http.Response, url string) error {
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
