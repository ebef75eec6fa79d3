package etrade

import (
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/net/context"
)

const (
	requestTokenPath = "oauth/request_token"
	accessTokenPath  = "oauth/access_token"
)

// FlowState is the step an authorization flow has reached.
type FlowState int

const (
	// NoToken is the state of a new Client.
	NoToken FlowState = iota
	// HasRequestToken follows a successful RequestToken.
	HasRequestToken
	// HasAccessToken follows a successful AccessToken.
	HasAccessToken
)

func (s FlowState) String() string {
	switch s {
	case NoToken:
		return "NoToken"
	case HasRequestToken:
		return "HasRequestToken"
	case HasAccessToken:
		return "HasAccessToken"
	}
	return "FlowState(" + strconv.Itoa(int(s)) + ")"
}

// oauthParams returns the protocol parameters shared by every signed
// request, with a fresh timestamp and nonce.
func (c *Client) oauthParams() (url.Values, error) {
	nonce, err := c.nonce()
	if err != nil {
		return nil, err
	}
	params := make(url.Values)
	params.Set("oauth_consumer_key", c.signer.ConsumerKey)
	params.Set("oauth_timestamp", strconv.FormatInt(c.now().Unix(), 10))
	params.Set("oauth_nonce", nonce)
	params.Set("oauth_signature_method", signatureMethod)
	return params, nil
}

// signedOptions signs a request to target and returns its options with
// the Authorization header set. query and form are signed along with the
// protocol parameters in extra.
func (c *Client) signedOptions(op, method, target string, extra url.Values, tokenSecret string, query, form map[string]string, overrides ...RequestOption) (RequestOptions, error) {
	params, err := c.oauthParams()
	if err != nil {
		return RequestOptions{}, &AuthError{Op: op, Err: err}
	}
	for key, values := range extra {
		params[key] = values
	}
	opts := Build(nil, query, form, overrides...)
	u, err := c.resolve(target)
	if err != nil {
		return RequestOptions{}, &AuthError{Op: op, Err: err}
	}
	// sign the URL exactly as send will build it
	merged := u.Query()
	for key, values := range opts.Query {
		merged[key] = values
	}
	u.RawQuery = merged.Encode()
	signature, err := c.signer.Signature(method, u.String(), params, opts.Form, nil, tokenSecret)
	if err != nil {
		return RequestOptions{}, &AuthError{Op: op, Err: err}
	}
	params.Set("oauth_signature", signature)
	opts.Header.Set("Authorization", formatOAuthHeader(params))
	return opts, nil
}

// exchange runs one token exchange against path and returns the parsed
// token state. c is not modified.
func (c *Client) exchange(ctx context.Context, op, path string, extra url.Values, tokenSecret string) (TokenState, error) {
	opts, err := c.signedOptions(op, http.MethodGet, path, extra, tokenSecret, nil, nil)
	if err != nil {
		return TokenState{}, err
	}
	res, err := c.send(ctx, http.MethodGet, path, opts)
	if err != nil {
		return TokenState{}, &AuthError{Op: op, Err: err}
	}
	body, err := readBody(res)
	if err != nil {
		return TokenState{}, &AuthError{Op: op, Err: &TransportError{Method: http.MethodGet, URL: path, Err: err}}
	}
	var next TokenState
	if err := next.ApplyTokenResponse(body); err != nil {
		return TokenState{}, err
	}
	return next, nil
}

// RequestToken obtains a request token (temporary credential) from
// oauth/request_token with an out-of-band callback and moves the client to
// HasRequestToken. Calling it again restarts the flow. On failure the
// client is left as it was.
// See https://apisb.etrade.com/docs/api/authorization/request_token.html
func (c *Client) RequestToken(ctx context.Context) error {
	c.step.Lock()
	defer c.step.Unlock()

	extra := url.Values{"oauth_callback": {callbackOOB}}
	tokens, err := c.exchange(ctx, "request token", requestTokenPath, extra, "")
	if err != nil {
		return err
	}
	c.commit(HasRequestToken, tokens)
	c.log.Debug().Object("tokens", tokens).Stringer("state", HasRequestToken).Msg("obtained request token")
	return nil
}

// AuthorizationURL returns the page the account holder must visit to
// authorize the current request token. The verification code shown there
// is passed to AccessToken.
func (c *Client) AuthorizationURL() (*url.URL, error) {
	state, tokens := c.snapshot()
	if state != HasRequestToken {
		return nil, &AuthError{Op: "authorize", Err: ErrNoRequestToken}
	}
	u := *c.authorizeURL
	query := u.Query()
	query.Set("key", c.signer.ConsumerKey)
	query.Set("token", tokens.Token())
	u.RawQuery = query.Encode()
	return &u, nil
}

// AuthorizeApplication requests the authorization page for the current
// request token. Redirects are not followed: the returned response is
// handed back unparsed and the caller must close its body. Extracting the
// oauth_verifier is left to an interactive caller.
// See https://apisb.etrade.com/docs/api/authorization/authorize.html
func (c *Client) AuthorizeApplication(ctx context.Context) (*http.Response, error) {
	c.step.Lock()
	defer c.step.Unlock()

	target, err := c.AuthorizationURL()
	if err != nil {
		return nil, err
	}
	tokens := c.Tokens()
	opts := Build(map[string]string{
		"oauth_consumer_key": c.signer.ConsumerKey,
		"oauth_token":        tokens.Token(),
	}, nil, nil, WithoutRedirects())
	res, err := c.send(ctx, http.MethodGet, target.String(), opts)
	if err != nil {
		return nil, &AuthError{Op: "authorize", Err: err}
	}
	return res, nil
}

// AccessToken exchanges the request token for an access token (token
// credential) at oauth/access_token and moves the client to
// HasAccessToken. verifier is the code the account holder received from
// the authorization page and is omitted when empty. It fails with
// ErrNoRequestToken, before any request is sent, unless RequestToken has
// completed.
// See https://apisb.etrade.com/docs/api/authorization/get_access_token.html
func (c *Client) AccessToken(ctx context.Context, verifier string) error {
	c.step.Lock()
	defer c.step.Unlock()

	state, current := c.snapshot()
	if state != HasRequestToken {
		return &AuthError{Op: "access token", Err: ErrNoRequestToken}
	}
	extra := url.Values{"oauth_token": {current.Token()}}
	if verifier != "" {
		extra.Set("oauth_verifier", verifier)
	}
	tokens, err := c.exchange(ctx, "access token", accessTokenPath, extra, current.Secret())
	if err != nil {
		return err
	}
	c.commit(HasAccessToken, tokens)
	c.log.Debug().Object("tokens", tokens).Stringer("state", HasAccessToken).Msg("obtained access token")
	return nil
}

// Request sends a request signed with the access token. uri is relative to
// the base URL unless absolute. query and form are signed with the request;
// a non-empty form is sent as an x-www-form-urlencoded body. Status codes
// of 400 and above are returned as *HTTPStatusError; otherwise the caller
// must close the response body.
func (c *Client) Request(ctx context.Context, method, uri string, query, form map[string]string, overrides ...RequestOption) (*http.Response, error) {
	state, tokens := c.snapshot()
	if state != HasAccessToken {
		return nil, &AuthError{Op: "request", Err: ErrNoAccessToken}
	}
	extra := url.Values{"oauth_token": {tokens.Token()}}
	opts, err := c.signedOptions("request", method, uri, extra, tokens.Secret(), query, form, overrides...)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, method, uri, opts)
}

// HTTPClient returns an *http.Client which signs every request with the
// access token held when it was called. It reuses the RoundTripper of the
// configured or context-carried *http.Client.
func (c *Client) HTTPClient(ctx context.Context) (*http.Client, error) {
	state, tokens := c.snapshot()
	if state != HasAccessToken {
		return nil, &AuthError{Op: "http client", Err: ErrNoAccessToken}
	}
	var base http.RoundTripper
	if hc, ok := c.doer(ctx, false).(*http.Client); ok {
		base = hc.Transport
	}
	return &http.Client{
		Transport: &Transport{
			Base:        base,
			signer:      c.signer,
			token:       tokens.Token(),
			tokenSecret: tokens.Secret(),
			nonce:       c.nonce,
			now:         c.now,
		},
	}, nil
}
