package goAuthClient

import (
	"io"
	"net/http"
)

// Transport returns a RoundTripper that authenticates requests with the viewer's access token.
// A 401 answer triggers one refresh and one replay; requests whose body cannot be replayed
// (no GetBody) are returned as is.
func (c *Client) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{client: c, base: base}
}

type authTransport struct {
	client *Client
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	token, err := t.client.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(withBearer(req, token))
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !t.client.config.Refresh.RetryOnUnauthorized {
		return resp, err
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	token, err = t.client.tokenAfterUnauthorized(ctx, token)
	if err != nil {
		return resp, nil
	}

	retry := withBearer(req, token)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()

	t.client.metrics.Inc(MetricRequestRetried)
	return t.base.RoundTrip(retry)
}

func withBearer(req *http.Request, token string) *http.Request {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
