package etrade

import (
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/google/uuid"
)

const (
	signatureMethod = "HMAC-SHA1"
	callbackOOB     = "oob"
)

// Signer computes OAuth1 HMAC-SHA1 signatures on behalf of one consumer.
// It holds no per-request state and is safe for concurrent use.
type Signer struct {
	// Consumer Key (Client Identifier)
	ConsumerKey string

	// Consumer Secret (Client Shared-Secret)
	ConsumerSecret string
}

// Signature returns the base64 encoded HMAC-SHA1 signature of a request.
// header carries the oauth_* protocol parameters, body the form
// parameters of an x-www-form-urlencoded body and query any query
// parameters not already present in rawURL. tokenSecret is empty until a
// request token has been obtained.
func (s Signer) Signature(method, rawURL string, header, body, query url.Values, tokenSecret string) (string, error) {
	base, err := s.Base(method, rawURL, header, body, query)
	if err != nil {
		return "", err
	}
	hs := &oauth1.HMACSigner{ConsumerSecret: s.ConsumerSecret}
	signature, err := hs.Sign(tokenSecret, base)
	if err != nil {
		return "", &AuthError{Op: "sign", Err: err}
	}
	return signature, nil
}

// Base returns the signature base string, see RFC 5849 3.4.1.
func (s Signer) Base(method, rawURL string, header, body, query url.Values) (string, error) {
	if s.ConsumerKey == "" {
		return "", &AuthError{Op: "sign", Err: ErrEmptyConsumerKey}
	}
	if rawURL == "" {
		return "", &AuthError{Op: "sign", Err: ErrEmptyURL}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &AuthError{Op: "sign", Err: err}
	}

	params := make(url.Values)
	for key, values := range header {
		if key == "oauth_signature" || key == "realm" {
			continue
		}
		params[key] = append(params[key], values...)
	}
	if params.Get("oauth_consumer_key") == "" {
		params.Set("oauth_consumer_key", s.ConsumerKey)
	}
	for _, set := range []url.Values{u.Query(), query, body} {
		for key, values := range set {
			params[key] = append(params[key], values...)
		}
	}

	return strings.Join([]string{
		strings.ToUpper(method),
		oauth1.PercentEncode(baseURI(u)),
		oauth1.PercentEncode(normalizeParams(params)),
	}, "&"), nil
}

// baseURI returns the scheme, authority and path of u with the scheme and
// host lower-cased and default ports removed.
func baseURI(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" {
		if !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
			host = net.JoinHostPort(host, port)
		}
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path
}

// normalizeParams percent-encodes every pair and sorts by key, then value.
func normalizeParams(params url.Values) string {
	type pair struct{ key, value string }
	pairs := make([]pair, 0, len(params))
	for key, values := range params {
		for _, value := range values {
			pairs = append(pairs, pair{oauth1.PercentEncode(key), oauth1.PercentEncode(value)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})
	joined := make([]string, len(pairs))
	for i, p := range pairs {
		joined[i] = p.key + "=" + p.value
	}
	return strings.Join(joined, "&")
}

// formatOAuthHeader renders params as an Authorization header value.
func formatOAuthHeader(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, value := range params[key] {
			pairs = append(pairs, oauth1.PercentEncode(key)+`="`+oauth1.PercentEncode(value)+`"`)
		}
	}
	return "OAuth " + strings.Join(pairs, ", ")
}

// newNonce returns 32 hex characters drawn from crypto/rand.
func newNonce() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
