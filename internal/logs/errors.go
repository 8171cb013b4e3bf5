package logs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrAPIUnavailable    = errors.New("log API unavailable")
	ErrTransport         = errors.New("transport error")
	ErrTimeout           = errors.New("timeout")
	ErrMalformedResponse = errors.New("malformed response")
)

// FetchError describes a failed request against the log endpoint. Kind is one
// of the marker errors above.
type FetchError struct {
	Kind      error
	Operation string
	StreamID  string
	Status    int
	Err       error
}

func (e *FetchError) Error() string {
	parts := make([]string, 0, 3)
	if op := strings.TrimSpace(e.Operation); op != "" {
		parts = append(parts, op)
	}
	if id := strings.TrimSpace(e.StreamID); id != "" {
		parts = append(parts, "stream "+id)
	}
	if e.Status != 0 {
		parts = append(parts, "status "+strconv.Itoa(e.Status))
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "log request failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, detail, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, detail)
}

func (e *FetchError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Kind returns the marker error carried by err, or nil when err did not come
// from this package.
func Kind(err error) error {
	for _, marker := range []error{ErrTimeout, ErrMalformedResponse, ErrTransport, ErrAPIUnavailable} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

// IsAPIUnavailable reports whether err means the endpoint could not be reached
// at all (unconfigured client or connection failure).
func IsAPIUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAPIUnavailable) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// IsUnauthorized reports whether the endpoint rejected the bearer token.
func IsUnauthorized(err error) bool {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	return fetchErr.Status == 401 || fetchErr.Status == 403
}

func classifyRequestError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrTransport
}
