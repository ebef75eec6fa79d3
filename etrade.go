// Package etrade is a client for the E*TRADE REST API. It drives the OAuth1
// three-legged authorization flow (request token, user authorization,
// access token) and then signs API requests on behalf of the caller.
package etrade

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/michaeldrennen/Etrade/internal"
	"github.com/rs/zerolog"
)

const (
	// ProductionURL is the root of the live E*TRADE API.
	ProductionURL = "https://api.etrade.com/v1/"

	// SandboxURL is the root of the E*TRADE sandbox API.
	SandboxURL = "https://apisb.etrade.com/v1/"

	// AuthorizeURL is the page where the account holder grants access to a
	// request token. It lives on a different host than the API.
	AuthorizeURL = "https://us.etrade.com/e/t/etws/authorize"
)

// HTTPClient is the context key to use with context's WithValue function
// to associate an *http.Client value with a context. It is used when
// Config.HTTPClient is nil.
var HTTPClient internal.ContextKey

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes one E*TRADE consumer.
type Config struct {
	// Consumer Key (Client Identifier)
	ConsumerKey string `envconfig:"CONSUMER_KEY" required:"true"`

	// Consumer Secret (Client Shared-Secret)
	ConsumerSecret string `envconfig:"CONSUMER_SECRET" required:"true"`

	// Sandbox selects SandboxURL instead of ProductionURL.
	Sandbox bool `envconfig:"SANDBOX" default:"false"`

	// BaseURL and AuthorizeURL replace the fixed E*TRADE hosts, for
	// example to point the client at a local provider.
	BaseURL      string `envconfig:"BASE_URL"`
	AuthorizeURL string `envconfig:"AUTHORIZE_URL"`

	// HTTPClient sends every request. When nil the *http.Client stored in
	// the request context under HTTPClient is used, else
	// http.DefaultClient.
	HTTPClient Doer `ignored:"true"`

	// Logger receives debug traces. Secrets are never logged.
	Logger *zerolog.Logger `ignored:"true"`
}

// Client holds the consumer configuration and the token state of one
// authorization flow. Flow steps on a Client are serialized; State and
// Tokens may be called from any goroutine.
type Client struct {
	signer       Signer
	sandbox      bool
	baseURL      *url.URL
	authorizeURL *url.URL
	httpClient   Doer
	log          zerolog.Logger

	now   func() time.Time
	nonce func() (string, error)

	step   sync.Mutex
	mu     sync.RWMutex
	state  FlowState
	tokens TokenState
}

// New validates cfg and returns a Client in the NoToken state.
func New(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.ConsumerKey)
	if key == "" {
		return nil, &ConfigError{Field: "ConsumerKey", Err: errors.New("must not be empty")}
	}
	if key != cfg.ConsumerKey {
		return nil, &ConfigError{Field: "ConsumerKey", Err: errors.New("must not contain surrounding whitespace")}
	}

	rawBase := ProductionURL
	if cfg.Sandbox {
		rawBase = SandboxURL
	}
	if cfg.BaseURL != "" {
		rawBase = cfg.BaseURL
	}
	baseURL, err := parseAbsoluteURL(rawBase)
	if err != nil {
		return nil, &ConfigError{Field: "BaseURL", Err: err}
	}
	// keep relative references such as "oauth/request_token" under the
	// API version path
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	rawAuthorize := AuthorizeURL
	if cfg.AuthorizeURL != "" {
		rawAuthorize = cfg.AuthorizeURL
	}
	authorizeURL, err := parseAbsoluteURL(rawAuthorize)
	if err != nil {
		return nil, &ConfigError{Field: "AuthorizeURL", Err: err}
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "etrade").Logger()
	}

	return &Client{
		signer:       Signer{ConsumerKey: cfg.ConsumerKey, ConsumerSecret: cfg.ConsumerSecret},
		sandbox:      cfg.Sandbox,
		baseURL:      baseURL,
		authorizeURL: authorizeURL,
		httpClient:   cfg.HTTPClient,
		log:          log,
		now:          time.Now,
		nonce:        newNonce,
	}, nil
}

func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("must be an absolute URL")
	}
	return u, nil
}

// BaseURL returns the API root the client was constructed with.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// ConsumerKey returns the consumer key requests are signed for.
func (c *Client) ConsumerKey() string { return c.signer.ConsumerKey }

// Sandbox reports whether the client targets the sandbox environment.
func (c *Client) Sandbox() bool { return c.sandbox }

// State returns the current step of the authorization flow.
func (c *Client) State() FlowState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Tokens returns a snapshot of the current token state.
func (c *Client) Tokens() TokenState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *Client) snapshot() (FlowState, TokenState) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state, c.tokens
}

func (c *Client) commit(state FlowState, tokens TokenState) {
	c.mu.Lock()
	c.state = state
	c.tokens = tokens
	c.mu.Unlock()
}
