package goAuthClient

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/session"
	"go.uber.org/zap"
)

// EnsureFreshToken refreshes the token pair and returns the new access token. Concurrent callers
// share one gateway refresh and all receive its outcome. When the refresh is rejected or fails
// the session ends and every caller gets ErrSessionExpired; there is no retry.
func (c *Client) EnsureFreshToken(ctx context.Context) (string, error) {
	current, epoch := c.currentEpoch()
	if current.Status != session.StatusAuthenticated && current.Status != session.StatusRefreshing {
		return "", ErrNotAuthenticated
	}

	out, shared := c.refresher.Do(ctx, epoch, func(ctx context.Context) (session.TokenPair, error) {
		return c.runRefresh(ctx, epoch)
	})
	if shared {
		c.metrics.Inc(MetricRefreshDeduplicated)
	}
	if out.Err != nil {
		return "", out.Err
	}
	return out.Tokens.AccessToken, nil
}

// runRefresh performs one refresh for the session generation epoch. If a logout or new login
// moved the epoch before it starts, nothing is sent to the gateway.
func (c *Client) runRefresh(ctx context.Context, epoch uint64) (session.TokenPair, error) {
	started, err := c.dispatch(ctx, session.RefreshStart{}, epoch, true)
	if err != nil {
		if errors.Is(err, ErrStaleResult) {
			return session.TokenPair{}, fmt.Errorf("%w: %w", ErrNotAuthenticated, ErrStaleResult)
		}
		return session.TokenPair{}, ErrNotAuthenticated
	}
	user := started.prev.User

	rec, err := c.store.Load(ctx)
	if err != nil {
		return session.TokenPair{}, c.failRefresh(ctx, started.epoch, user, fmt.Errorf("load refresh token: %w", err))
	}
	// A newer session may have written its own pair since RefreshStart; never send that one.
	if _, cur := c.currentEpoch(); cur != started.epoch {
		c.metrics.Inc(MetricStaleResultDiscarded)
		return session.TokenPair{}, fmt.Errorf("%w: %w", ErrNotAuthenticated, ErrStaleResult)
	}

	c.metrics.Inc(MetricRefreshStarted)
	res := flows.RunRefresh(ctx, rec.Tokens.RefreshToken, c.flows.Refresh)
	if errors.Is(res.Err, flows.ErrGatewayPanic) {
		c.logger.Error("gateway panicked during refresh", userField(user), zap.Error(res.Err))
	}
	if res.Failure != flows.RefreshFailureNone {
		return session.TokenPair{}, c.failRefresh(ctx, started.epoch, user, res.Err)
	}

	if _, err := c.dispatch(ctx, session.RefreshSuccess{Tokens: res.Tokens}, started.epoch, true); err != nil {
		switch {
		case errors.Is(err, ErrStaleResult):
			return session.TokenPair{}, fmt.Errorf("%w: %w", ErrNotAuthenticated, ErrStaleResult)
		case errors.Is(err, ErrCredentialStore):
			return session.TokenPair{}, c.refreshEnded(ctx, user, err)
		default:
			return session.TokenPair{}, err
		}
	}
	c.metrics.Inc(MetricRefreshSuccess)
	c.logger.Debug("token refreshed", userField(user))
	c.emitAudit(ctx, AuditRefreshSuccess, true, user, nil, nil)
	return res.Tokens, nil
}

func (c *Client) failRefresh(ctx context.Context, epoch uint64, user *User, cause error) error {
	if _, err := c.dispatch(ctx, session.RefreshFailure{}, epoch, true); err != nil && errors.Is(err, ErrStaleResult) {
		return fmt.Errorf("%w: %w", ErrNotAuthenticated, ErrStaleResult)
	}
	return c.refreshEnded(ctx, user, cause)
}

// refreshEnded records a refresh that signed the viewer out.
func (c *Client) refreshEnded(ctx context.Context, user *User, cause error) error {
	c.metrics.Inc(MetricRefreshFailure)
	c.logger.Info("refresh failed, session ended", userField(user), zap.Error(cause))
	c.emitAudit(ctx, AuditRefreshFailure, false, user, cause, nil)
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

// AccessToken returns the current access token, refreshing it first when it is a JWT whose exp
// falls within Refresh.Skew. Opaque tokens are returned as is.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	switch c.Session().Status {
	case session.StatusAuthenticated:
	case session.StatusRefreshing:
		return c.EnsureFreshToken(ctx)
	default:
		return "", ErrNotAuthenticated
	}

	rec, err := c.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load access token: %w", err)
	}
	if !rec.HasAccessToken() {
		return "", ErrNotAuthenticated
	}

	token := rec.Tokens.AccessToken
	if exp, ok := jwt.PeekExpiry(token); ok && !c.now().Add(c.config.Refresh.Skew).Before(exp) {
		return c.EnsureFreshToken(ctx)
	}
	return token, nil
}

// tokenAfterUnauthorized returns a token to replay with after used was rejected. If another
// caller already rotated the pair the current token is reused instead of refreshing again.
func (c *Client) tokenAfterUnauthorized(ctx context.Context, used string) (string, error) {
	if c.Session().Status == session.StatusAuthenticated {
		if rec, err := c.store.Load(ctx); err == nil && rec.HasAccessToken() && rec.Tokens.AccessToken != used {
			return rec.Tokens.AccessToken, nil
		}
	}
	return c.EnsureFreshToken(ctx)
}

// Do calls fn with a valid access token. If fn reports the token was rejected by returning an
// error matching gateway.ErrUnauthorized, the token is refreshed and fn runs once more.
func (c *Client) Do(ctx context.Context, fn func(ctx context.Context, accessToken string) error) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}
	err = fn(ctx, token)
	if err == nil || !c.config.Refresh.RetryOnUnauthorized || !errors.Is(err, gateway.ErrUnauthorized) {
		return err
	}

	token, err = c.tokenAfterUnauthorized(ctx, token)
	if err != nil {
		return err
	}
	c.metrics.Inc(MetricRequestRetried)
	return fn(ctx, token)
}
