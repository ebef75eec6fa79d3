package etrade

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("connection refused")
	cases := []struct {
		err      error
		expected string
	}{
		{&ConfigError{Field: "ConsumerKey", Err: errors.New("must not be empty")}, "etrade: invalid config ConsumerKey: must not be empty"},
		{&TransportError{Method: "GET", URL: SandboxURL, Err: cause}, "etrade: GET https://apisb.etrade.com/v1/: connection refused"},
		{&HTTPStatusError{Method: "GET", URL: SandboxURL, StatusCode: 500}, "etrade: GET https://apisb.etrade.com/v1/: server returned unexpected status 500"},
		{&ParseError{Missing: []string{"oauth_token", "oauth_token_secret"}}, "etrade: token response missing oauth_token, oauth_token_secret"},
		{&AuthError{Op: "request token", Err: cause}, "etrade: request token: connection refused"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, tc.err.Error())
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: no such host")
	err := &AuthError{Op: "request token", Err: &TransportError{Method: "GET", URL: SandboxURL, Err: cause}}
	assert.True(t, errors.Is(err, cause))
	var transportErr *TransportError
	assert.True(t, errors.As(err, &transportErr))
	var statusErr *HTTPStatusError
	assert.False(t, errors.As(err, &statusErr))
}
