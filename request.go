package etrade

import (
	"net/http"
	"net/url"
)

// RequestOptions is everything Client sends besides the method and target.
// Header, Query and Form are independent namespaces: a key set in one is
// never copied into another.
type RequestOptions struct {
	Header http.Header
	Query  url.Values
	Form   url.Values

	// NoRedirect returns 3xx responses to the caller instead of following
	// them. Only honoured when the Doer is an *http.Client.
	NoRedirect bool
}

// RequestOption overrides part of a RequestOptions after all layers have
// been merged.
type RequestOption func(*RequestOptions)

// WithHeader sets a header, replacing any layered value.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) { o.Header.Set(key, value) }
}

// WithQuery sets a query parameter, replacing any layered value.
func WithQuery(key, value string) RequestOption {
	return func(o *RequestOptions) { o.Query.Set(key, value) }
}

// WithForm sets a form parameter, replacing any layered value.
func WithForm(key, value string) RequestOption {
	return func(o *RequestOptions) { o.Form.Set(key, value) }
}

// WithoutRedirects stops the transport from following redirects.
func WithoutRedirects() RequestOption {
	return func(o *RequestOptions) { o.NoRedirect = true }
}

// Build merges the layers of a request in the order
// header < query < form < overrides; later layers win on collision. Any
// layer may be nil.
func Build(header, query, form map[string]string, overrides ...RequestOption) RequestOptions {
	opts := RequestOptions{
		Header: make(http.Header, len(header)),
		Query:  make(url.Values, len(query)),
		Form:   make(url.Values, len(form)),
	}
	for key, value := range header {
		opts.Header.Set(key, value)
	}
	for key, value := range query {
		opts.Query.Set(key, value)
	}
	for key, value := range form {
		opts.Form.Set(key, value)
	}
	for _, override := range overrides {
		override(&opts)
	}
	return opts
}
