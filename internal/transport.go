package internal

import (
	"net/http"

	"golang.org/x/net/context"
)

// ContextKey is just an empty struct. It exists so the HTTPClient key can
// be an immutable public variable with a unique type.
type ContextKey struct{}

// HTTPClient is the context key under which callers may store the
// *http.Client used for token exchanges and API calls.
var HTTPClient ContextKey

// ContextClient returns the *http.Client stored in ctx, or
// http.DefaultClient when there is none.
func ContextClient(ctx context.Context) *http.Client {
	if ctx != nil {
		if hc, ok := ctx.Value(HTTPClient).(*http.Client); ok && hc != nil {
			return hc
		}
	}
	return http.DefaultClient
}

// NoRedirectClient returns a shallow copy of hc that hands redirect
// responses back to the caller instead of following them.
func NoRedirectClient(hc *http.Client) *http.Client {
	c := *hc
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}
