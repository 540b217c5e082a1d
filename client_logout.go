package goAuthClient

import (
	"context"

	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/session"
	"go.uber.org/zap"
)

// Logout ends the session. Local state and persisted credentials are always cleared, from any
// status, and calling it repeatedly is harmless. The gateway is told afterwards on a best-effort
// basis; its failures are logged and counted but never returned.
func (c *Client) Logout(ctx context.Context) {
	accessToken := ""
	if rec, err := c.store.Load(ctx); err == nil {
		accessToken = rec.Tokens.AccessToken
	} else {
		c.logger.Warn("reading credentials for remote logout failed", zap.Error(err))
	}

	tr, err := c.dispatch(ctx, session.Logout{}, 0, false)
	if err != nil {
		// Logout is accepted from every status; this only fires if the table changes.
		c.logger.Error("logout transition rejected", zap.Error(err))
		return
	}

	c.metrics.Inc(MetricLogout)
	if tr.prev.User != nil {
		c.logger.Info("logged out", userField(tr.prev.User))
		c.emitAudit(ctx, AuditLogout, true, tr.prev.User, nil, nil)
	}

	res := flows.RunLogout(ctx, accessToken, c.flows.Logout)
	if res.Failure == flows.LogoutFailureRemote {
		c.metrics.Inc(MetricLogoutRemoteFailure)
		c.logger.Warn("remote logout failed", userField(tr.prev.User), zap.Error(res.Err))
		c.emitAudit(ctx, AuditLogoutRemoteFailure, false, tr.prev.User, res.Err, nil)
	}
}
