package etrade

import (
	"errors"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigner() Signer {
	return Signer{ConsumerKey: "CK1", ConsumerSecret: "CS1"}
}

func testHeaderParams() url.Values {
	params := url.Values{}
	params.Set("oauth_consumer_key", "CK1")
	params.Set("oauth_timestamp", "1700000000")
	params.Set("oauth_nonce", "0123456789abcdef0123456789abcdef")
	params.Set("oauth_signature_method", signatureMethod)
	params.Set("oauth_callback", callbackOOB)
	return params
}

func TestSignature_Deterministic(t *testing.T) {
	signer := testSigner()
	body := url.Values{"symbol": {"GOOG"}}
	query := url.Values{"count": {"10"}}
	first, err := signer.Signature("GET", SandboxURL+"oauth/request_token", testHeaderParams(), body, query, "")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := signer.Signature("GET", SandboxURL+"oauth/request_token", testHeaderParams(), body, query, "")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSignature_EveryParameterMatters(t *testing.T) {
	signer := testSigner()
	target := SandboxURL + "accounts/list"
	newSets := func() (url.Values, url.Values, url.Values) {
		return testHeaderParams(), url.Values{"symbol": {"GOOG"}}, url.Values{"count": {"10"}}
	}
	header, body, query := newSets()
	base, err := signer.Signature("POST", target, header, body, query, "secret")
	require.NoError(t, err)

	for i, name := range []string{"header", "body", "query"} {
		header, body, query := newSets()
		for key := range []url.Values{header, body, query}[i] {
			header, body, query := newSets()
			set := []url.Values{header, body, query}[i]
			set.Set(key, set.Get(key)+"x")
			changed, err := signer.Signature("POST", target, header, body, query, "secret")
			require.NoError(t, err)
			assert.NotEqual(t, base, changed, "changing %s parameter %s kept the signature", name, key)
		}
	}

	otherSecret, err := signer.Signature("POST", target, testHeaderParams(), url.Values{"symbol": {"GOOG"}}, url.Values{"count": {"10"}}, "other")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherSecret)

	otherMethod, err := signer.Signature("PUT", target, testHeaderParams(), url.Values{"symbol": {"GOOG"}}, url.Values{"count": {"10"}}, "secret")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherMethod)
}

func TestSignature_IgnoresSignatureAndRealm(t *testing.T) {
	signer := testSigner()
	plain, err := signer.Signature("GET", SandboxURL, testHeaderParams(), nil, nil, "")
	require.NoError(t, err)

	header := testHeaderParams()
	header.Set("oauth_signature", "stale")
	header.Set("realm", "etrade")
	withExtras, err := signer.Signature("GET", SandboxURL, header, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, plain, withExtras)
}

func TestSignature_EmptyParameterMaps(t *testing.T) {
	signature, err := testSigner().Signature("GET", SandboxURL, nil, nil, nil, "")
	require.NoError(t, err)
	assert.NotEmpty(t, signature)

	empty, err := testSigner().Signature("GET", SandboxURL, url.Values{}, url.Values{}, url.Values{}, "")
	require.NoError(t, err)
	assert.Equal(t, signature, empty)
}

func TestSignature_Errors(t *testing.T) {
	_, err := Signer{ConsumerSecret: "CS1"}.Signature("GET", SandboxURL, nil, nil, nil, "")
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.True(t, errors.Is(err, ErrEmptyConsumerKey))

	_, err = testSigner().Signature("GET", "", nil, nil, nil, "")
	assert.True(t, errors.Is(err, ErrEmptyURL))

	_, err = testSigner().Signature("GET", "http://[::1", nil, nil, nil, "")
	assert.True(t, errors.As(err, &authErr))
}

func TestBaseURI(t *testing.T) {
	cases := map[string]string{
		"HTTPS://API.Etrade.com/v1/oauth/request_token?a=1#frag": "https://api.etrade.com/v1/oauth/request_token",
		"https://apisb.etrade.com:443/v1/":                       "https://apisb.etrade.com/v1/",
		"http://localhost:80/x":                                  "http://localhost/x",
		"http://127.0.0.1:8080/x":                                "http://127.0.0.1:8080/x",
		"https://api.etrade.com":                                 "https://api.etrade.com/",
	}
	for raw, expected := range cases {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, expected, baseURI(u), raw)
	}
}

func TestNormalizeParams_SortsValues(t *testing.T) {
	params := url.Values{"b": {"2", "1"}, "a": {"z"}, "a b": {"c"}}
	assert.Equal(t, "a=z&a%20b=c&b=1&b=2", normalizeParams(params))
}

func TestFormatOAuthHeader(t *testing.T) {
	params := url.Values{}
	params.Set("oauth_nonce", "n")
	params.Set("oauth_callback", callbackOOB)
	params.Set("oauth_signature", "a+b/c=")
	assert.Equal(t, `OAuth oauth_callback="oob", oauth_nonce="n", oauth_signature="a%2Bb%2Fc%3D"`, formatOAuthHeader(params))
}

func TestNewNonce(t *testing.T) {
	hex := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		nonce, err := newNonce()
		require.NoError(t, err)
		assert.Regexp(t, hex, nonce)
		assert.False(t, seen[nonce], "nonce %s repeated", nonce)
		seen[nonce] = true
	}
}
