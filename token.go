package etrade

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

const redacted = "[REDACTED]"

// TokenState holds the OAuth token triple of one authorization flow. The
// zero value is the empty state before any token exchange. The secret is
// never printed or logged.
type TokenState struct {
	token             string
	secret            string
	callbackConfirmed bool
}

// Token returns the current oauth_token.
func (s TokenState) Token() string { return s.token }

// Secret returns the current oauth_token_secret.
func (s TokenState) Secret() string { return s.secret }

// CallbackConfirmed returns the oauth_callback_confirmed flag.
func (s TokenState) CallbackConfirmed() bool { return s.callbackConfirmed }

// IsZero reports whether no token has been applied.
func (s TokenState) IsZero() bool { return s == TokenState{} }

// ApplyTokenResponse parses an x-www-form-urlencoded token response and
// replaces all three fields. The body must carry non-empty oauth_token and
// oauth_token_secret values and a boolean oauth_callback_confirmed. On any
// error a *ParseError is returned and s is left as it was.
func (s *TokenState) ApplyTokenResponse(body string) error {
	values, err := url.ParseQuery(body)
	if err != nil {
		return &ParseError{Err: err}
	}
	var missing []string
	for _, key := range []string{"oauth_token", "oauth_token_secret", "oauth_callback_confirmed"} {
		if values.Get(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &ParseError{Missing: missing}
	}
	confirmed, err := strconv.ParseBool(values.Get("oauth_callback_confirmed"))
	if err != nil {
		return &ParseError{Err: fmt.Errorf("oauth_callback_confirmed: %w", err)}
	}

	*s = TokenState{
		token:             values.Get("oauth_token"),
		secret:            values.Get("oauth_token_secret"),
		callbackConfirmed: confirmed,
	}
	return nil
}

func (s TokenState) String() string {
	secret := ""
	if s.secret != "" {
		secret = redacted
	}
	return fmt.Sprintf("{token: %q, secret: %q, confirmed: %t}", s.token, secret, s.callbackConfirmed)
}

// GoString keeps %#v from printing the secret.
func (s TokenState) GoString() string { return "etrade.TokenState" + s.String() }

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s TokenState) MarshalZerologObject(e *zerolog.Event) {
	e.Str("oauth_token", s.token).
		Bool("oauth_callback_confirmed", s.callbackConfirmed).
		Bool("has_secret", s.secret != "")
}
