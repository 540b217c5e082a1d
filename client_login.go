package goAuthClient

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/session"
	"go.uber.org/zap"
)

// Login authenticates with creds. Empty or malformed input fails with ErrCredentialsRequired
// without touching the session. Otherwise the session passes through AUTHENTICATING and always
// ends in AUTHENTICATED or ERROR, unless a logout or newer login superseded it, in which case
// ErrStaleResult is returned and nothing is applied.
func (c *Client) Login(ctx context.Context, creds Credentials) (User, error) {
	creds, err := gateway.ValidateCredentials(creds)
	if err != nil {
		c.metrics.Inc(MetricLoginRejectedInput)
		return User{}, fmt.Errorf("%w: %v", ErrCredentialsRequired, err)
	}

	started, err := c.dispatch(ctx, session.LoginStart{}, 0, false)
	if err != nil {
		switch started.prev.Status {
		case session.StatusAuthenticating:
			return User{}, ErrLoginInProgress
		case session.StatusAuthenticated, session.StatusRefreshing:
			return User{}, ErrAlreadyAuthenticated
		default:
			return User{}, err
		}
	}

	res := flows.RunLogin(ctx, creds, c.flows.Login)
	if res.Failure == flows.LoginFailureNone {
		return c.completeLogin(ctx, started.epoch, res)
	}
	return User{}, c.failLogin(ctx, started.epoch, res)
}

func (c *Client) completeLogin(ctx context.Context, epoch uint64, res flows.LoginResult) (User, error) {
	_, err := c.dispatch(ctx, session.LoginSuccess{User: res.User, Tokens: res.Tokens}, epoch, true)
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleResult):
		return User{}, ErrStaleResult
	case errors.Is(err, ErrCredentialStore):
		c.metrics.Inc(MetricLoginFailure)
		c.logger.Warn("login failed", zap.String("reason", "store_write"), zap.Error(err))
		c.emitAudit(ctx, AuditLoginFailure, false, nil, err, map[string]string{"reason": "store_write"})
		return User{}, err
	default:
		return User{}, err
	}

	c.metrics.Inc(MetricLoginSuccess)
	c.logger.Info("login succeeded", zap.String("user_id", res.User.ID), zap.String("role", string(res.User.Role)))
	user := res.User
	c.emitAudit(ctx, AuditLoginSuccess, true, &user, nil, nil)
	return res.User, nil
}

func (c *Client) failLogin(ctx context.Context, epoch uint64, res flows.LoginResult) error {
	message := MessageUnavailable
	surfaced := fmt.Errorf("%w: %w", ErrNetworkFailure, res.Err)
	reason := "network"
	switch res.Failure {
	case flows.LoginFailureInvalidCredentials:
		message = MessageInvalidCredentials
		surfaced = ErrInvalidCredentials
		reason = "invalid_credentials"
	case flows.LoginFailureMalformed:
		reason = "malformed_response"
	}
	if errors.Is(res.Err, flows.ErrGatewayPanic) {
		reason = "gateway_panic"
		c.logger.Error("gateway panicked during login", zap.Error(res.Err))
	}

	if _, err := c.dispatch(ctx, session.LoginFailure{Message: message}, epoch, true); err != nil {
		if errors.Is(err, ErrStaleResult) {
			return ErrStaleResult
		}
		return err
	}

	c.metrics.Inc(MetricLoginFailure)
	c.logger.Info("login failed", zap.String("reason", reason), zap.Error(res.Err))
	c.emitAudit(ctx, AuditLoginFailure, false, nil, res.Err, map[string]string{"reason": reason})
	return surfaced
}
