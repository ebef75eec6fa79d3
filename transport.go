package etrade

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Transport is an http.RoundTripper which makes OAuth1 HTTP requests. It
// wraps a base RoundTripper and adds an Authorization header signed with
// an access token.
//
// Transport is a low-level component, most users should use
// Client.HTTPClient instead.
type Transport struct {
	// Base is the base RoundTripper used to make HTTP requests. If nil, then
	// http.DefaultTransport is used
	Base http.RoundTripper

	signer      Signer
	token       string
	tokenSecret string
	nonce       func() (string, error)
	now         func() time.Time
}

// RoundTrip authorizes the request with a signed OAuth1 Authorization header
// using the credentials given.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	form, err := formParams(req)
	if err != nil {
		return nil, err
	}
	nonce, err := t.nonceSource()()
	if err != nil {
		return nil, &AuthError{Op: "request", Err: err}
	}
	params := make(url.Values)
	params.Set("oauth_consumer_key", t.signer.ConsumerKey)
	params.Set("oauth_nonce", nonce)
	params.Set("oauth_signature_method", signatureMethod)
	params.Set("oauth_timestamp", strconv.FormatInt(t.clock()().Unix(), 10))
	params.Set("oauth_token", t.token)
	signature, err := t.signer.Signature(req.Method, req.URL.String(), params, form, nil, t.tokenSecret)
	if err != nil {
		return nil, err
	}
	params.Set("oauth_signature", signature)

	// RoundTripper should not modify the given request, clone it
	req2 := cloneRequest(req)
	req2.Header.Set("Authorization", formatOAuthHeader(params))
	return t.base().RoundTrip(req2)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) nonceSource() func() (string, error) {
	if t.nonce != nil {
		return t.nonce
	}
	return newNonce
}

func (t *Transport) clock() func() time.Time {
	if t.now != nil {
		return t.now
	}
	return time.Now
}

// formParams returns the parameters of an x-www-form-urlencoded body and
// restores req.Body so it can still be sent.
func formParams(req *http.Request) (url.Values, error) {
	if req.Body == nil || req.Body == http.NoBody || req.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		return nil, nil
	}
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(b))
	return url.ParseQuery(string(b))
}

// cloneRequest returns a clone of the given *http.Request with a shallow
// copy of struct fields and a deep copy of the Header map.
func cloneRequest(req *http.Request) *http.Request {
	// shallow copy the struct
	r2 := new(http.Request)
	*r2 = *req
	// deep copy Header so setting a header on the clone does not affect original
	r2.Header = make(http.Header, len(req.Header))
	for k, s := range req.Header {
		r2.Header[k] = append([]string(nil), s...)
	}
	return r2
}
