package httpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/session"
)

const (
	// PathLogin is the login endpoint.
	PathLogin = "/auth/login"
	// PathLogout is the logout endpoint.
	PathLogout = "/auth/logout"
	// PathMe is the current-user endpoint.
	PathMe = "/auth/me"
	// PathRefresh is the token refresh endpoint.
	PathRefresh = "/auth/refresh"

	// StatusSuccess is the envelope status of a successful response.
	StatusSuccess = "success"
	// StatusError is the envelope status of a failed response.
	StatusError = "error"

	maxBodyBytes = 1 << 20
)

// Envelope wraps every gateway response body.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client talks to an auth gateway over HTTP. It is safe for concurrent use.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a Client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpgateway: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpgateway: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("httpgateway: base url has no host")
	}

	c := &Client{
		base:       u,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  "goAuthClient",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ gateway.Gateway = (*Client)(nil)

// Login implements gateway.Gateway.
func (c *Client) Login(ctx context.Context, creds gateway.Credentials) (gateway.LoginResponse, error) {
	var out gateway.LoginResponse

	status, env, err := c.call(ctx, http.MethodPost, PathLogin, "", creds)
	if err != nil {
		return out, err
	}
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnauthorized,
		status == http.StatusForbidden, status == http.StatusUnprocessableEntity:
		return out, gateway.ErrInvalidCredentials
	case status < 200 || status > 299:
		return out, fmt.Errorf("%w: login returned %d", gateway.ErrNetworkFailure, status)
	}

	if err := decodeData(env, &out); err != nil {
		return out, err
	}
	if err := gateway.ValidateLoginResponse(out); err != nil {
		return gateway.LoginResponse{}, err
	}
	return out, nil
}

// Logout implements gateway.Gateway.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	status, _, err := c.call(ctx, http.MethodPost, PathLogout, accessToken, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusUnauthorized:
		return gateway.ErrUnauthorized
	case status < 200 || status > 299:
		return fmt.Errorf("%w: logout returned %d", gateway.ErrNetworkFailure, status)
	}
	return nil
}

// GetCurrentUser implements gateway.Gateway. Any non-2xx status is ErrUnauthorized.
func (c *Client) GetCurrentUser(ctx context.Context, accessToken string) (session.User, error) {
	var out session.User

	status, env, err := c.call(ctx, http.MethodGet, PathMe, accessToken, nil)
	if err != nil {
		return out, err
	}
	if status < 200 || status > 299 {
		return out, fmt.Errorf("%w: me returned %d", gateway.ErrUnauthorized, status)
	}
	if err := decodeData(env, &out); err != nil {
		return out, err
	}
	if err := gateway.ValidateUser(out); err != nil {
		return session.User{}, err
	}
	return out, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken implements gateway.Gateway. Any non-2xx status is ErrUnauthorized.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	var out session.TokenPair

	status, env, err := c.call(ctx, http.MethodPost, PathRefresh, "", refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return out, err
	}
	if status < 200 || status > 299 {
		return out, fmt.Errorf("%w: refresh returned %d", gateway.ErrUnauthorized, status)
	}
	if err := decodeData(env, &out); err != nil {
		return out, err
	}
	if err := gateway.ValidateTokenPair(out); err != nil {
		return session.TokenPair{}, err
	}
	return out, nil
}

// call performs one request. Transport failures are ErrNetworkFailure; the envelope is only
// decoded for 2xx responses.
func (c *Client) call(ctx context.Context, method, path, bearer string, body any) (int, Envelope, error) {
	var env Envelope

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, env, fmt.Errorf("httpgateway: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return 0, env, fmt.Errorf("httpgateway: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, env, fmt.Errorf("%w: %w", gateway.ErrNetworkFailure, ctxErr)
		}
		return 0, env, fmt.Errorf("%w: %v", gateway.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, env, fmt.Errorf("%w: read body: %v", gateway.ErrNetworkFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, env, nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, env, fmt.Errorf("%w: empty body", gateway.ErrMalformedResponse)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, env, fmt.Errorf("%w: %v", gateway.ErrMalformedResponse, err)
	}
	if env.Status != StatusSuccess {
		return resp.StatusCode, env, fmt.Errorf("%w: envelope status %q", gateway.ErrMalformedResponse, env.Status)
	}
	return resp.StatusCode, env, nil
}

func decodeData(env Envelope, out any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: missing data", gateway.ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrMalformedResponse, err)
	}
	return nil
}
