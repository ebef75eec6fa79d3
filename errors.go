package etrade

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRequestToken is returned when a step needs a request token and
	// RequestToken has not completed yet.
	ErrNoRequestToken = errors.New("etrade: no request token, call RequestToken first")

	// ErrNoAccessToken is returned when a signed API call is attempted
	// before AccessToken has completed.
	ErrNoAccessToken = errors.New("etrade: no access token, complete the authorization flow first")

	// ErrEmptyConsumerKey is returned when signing without a consumer key.
	ErrEmptyConsumerKey = errors.New("etrade: empty consumer key")

	// ErrEmptyURL is returned when signing without a target URL.
	ErrEmptyURL = errors.New("etrade: empty URL")
)

// ConfigError reports an invalid Config passed to New or loaded from the
// environment.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("etrade: invalid config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError means no response was obtained at all, so the server may
// never have seen the request.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("etrade: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError means the server answered with a 4xx or 5xx status.
// Body holds the response text for diagnostics.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("etrade: %s %s: server returned unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// ParseError reports a token response body that was not valid
// x-www-form-urlencoded text or lacked required keys.
type ParseError struct {
	Missing []string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("etrade: cannot parse token response: %v", e.Err)
	}
	return fmt.Sprintf("etrade: token response missing %s", strings.Join(e.Missing, ", "))
}

func (e *ParseError) Unwrap() error { return e.Err }

// AuthError reports a signing or flow-sequencing failure. Transport
// failures during a token exchange are wrapped in an AuthError naming the
// step; the underlying *TransportError or *HTTPStatusError stays reachable
// with errors.As.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("etrade: %s: %s", e.Op, strings.TrimPrefix(e.Err.Error(), "etrade: "))
}

func (e *AuthError) Unwrap() error { return e.Err }
