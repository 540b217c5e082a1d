package goAuthClient

import (
	"context"
	"errors"

	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/session"
	"go.uber.org/zap"
)

// Bootstrap restores a session from persisted credentials. It runs once per Client; later
// calls return the first outcome. Failures are silent: unusable credentials are cleared and the
// viewer stays unauthenticated without an error message.
func (c *Client) Bootstrap(ctx context.Context) BootstrapOutcome {
	c.bootstrapOnce.Do(func() {
		c.bootstrapOutcome = c.runBootstrap(ctx)
	})
	return c.bootstrapOutcome
}

func (c *Client) runBootstrap(ctx context.Context) BootstrapOutcome {
	snap, epoch := c.currentEpoch()
	if snap.Status != session.StatusUnauthenticated && snap.Status != session.StatusError {
		return BootstrapSuperseded
	}

	if !c.flushPendingClear(ctx) {
		c.metrics.Inc(MetricBootstrapCleared)
		c.logger.Warn("persisted session not restored: an earlier clear is still pending")
		c.emitAudit(ctx, AuditBootstrapCleared, false, nil, ErrCredentialStore, map[string]string{"reason": "clear_pending"})
		return BootstrapCleared
	}

	res := flows.RunBootstrap(ctx, c.flows.Bootstrap)
	switch res.Failure {
	case flows.BootstrapFailureNoToken:
		return BootstrapNoToken

	case flows.BootstrapFailureNone:
		tr, err := c.dispatch(ctx, session.BootstrapRestored{User: res.User}, epoch, true)
		if err != nil {
			if !errors.Is(err, ErrStaleResult) {
				c.logger.Warn("bootstrap restore rejected", zap.Error(err))
			}
			return BootstrapSuperseded
		}
		c.metrics.Inc(MetricBootstrapRestored)
		c.logger.Info("session restored", userField(tr.next.User), zap.String("role", string(res.User.Role)))
		c.emitAudit(ctx, AuditBootstrapRestored, true, tr.next.User, nil, nil)
		return BootstrapRestored

	default:
		if !c.clearIfCurrent(ctx, epoch) {
			return BootstrapSuperseded
		}
		reason := bootstrapReason(res.Failure)
		c.metrics.Inc(MetricBootstrapCleared)
		c.logger.Info("persisted session discarded", zap.String("reason", reason), zap.Error(res.Err))
		c.emitAudit(ctx, AuditBootstrapCleared, false, nil, res.Err, map[string]string{"reason": reason})
		return BootstrapCleared
	}
}

// clearIfCurrent removes persisted credentials unless a login or logout happened since epoch.
func (c *Client) clearIfCurrent(ctx context.Context, epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.metrics.Inc(MetricStaleResultDiscarded)
		return false
	}
	_ = c.clearStoreLocked(context.WithoutCancel(ctx))
	return true
}

func bootstrapReason(kind flows.BootstrapFailureKind) string {
	switch kind {
	case flows.BootstrapFailureLoad:
		return "store_unreadable"
	case flows.BootstrapFailureUnauthorized:
		return "unauthorized"
	case flows.BootstrapFailureMalformed:
		return "malformed_response"
	default:
		return "network"
	}
}
