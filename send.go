package etrade

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/michaeldrennen/Etrade/internal"
	"golang.org/x/net/context"
)

// resolve turns uri into an absolute URL. Absolute URLs are used as-is,
// anything else is taken relative to the base URL.
func (c *Client) resolve(uri string) (*url.URL, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	if ref.IsAbs() {
		return ref, nil
	}
	return c.baseURL.ResolveReference(ref), nil
}

func (c *Client) doer(ctx context.Context, noRedirect bool) Doer {
	d := c.httpClient
	if d == nil {
		d = internal.ContextClient(ctx)
	}
	if hc, ok := d.(*http.Client); ok && noRedirect {
		return internal.NoRedirectClient(hc)
	}
	return d
}

// send issues one request. A failure to obtain any response is returned as
// a *TransportError, a 4xx or 5xx response as a *HTTPStatusError with the
// body already read and closed. Otherwise the caller owns the response
// body.
func (c *Client) send(ctx context.Context, method, uri string, opts RequestOptions) (*http.Response, error) {
	target, err := c.resolve(uri)
	if err != nil {
		return nil, &TransportError{Method: method, URL: uri, Err: err}
	}
	if len(opts.Query) > 0 {
		query := target.Query()
		for key, values := range opts.Query {
			query[key] = values
		}
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if len(opts.Form) > 0 {
		body = strings.NewReader(opts.Form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target.String(), Err: err}
	}
	for key, values := range opts.Header {
		req.Header[key] = append([]string(nil), values...)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.log.Debug().
		Str("method", method).
		Str("url", redactURL(target)).
		Bool("no_redirect", opts.NoRedirect).
		Msg("sending request")

	res, err := c.doer(ctx, opts.NoRedirect).Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: redactURL(target), Err: err}
	}
	c.log.Debug().Int("status", res.StatusCode).Str("url", redactURL(target)).Msg("received response")

	if res.StatusCode >= http.StatusBadRequest {
		defer res.Body.Close()
		b, _ := io.ReadAll(res.Body)
		return nil, &HTTPStatusError{
			Method:     method,
			URL:        redactURL(target),
			StatusCode: res.StatusCode,
			Body:       string(b),
		}
	}
	return res, nil
}

// readBody drains and closes res.Body.
func readBody(res *http.Response) (string, error) {
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// redactURL drops the query, which may carry tokens, from logged URLs.
func redactURL(u *url.URL) string {
	r := *u
	r.RawQuery = ""
	r.User = nil
	return r.String()
}
