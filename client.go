package goAuthClient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway"
	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/refresh"
	"github.com/MrEthical07/goAuthClient/session"
	"go.uber.org/zap"
)

// Client drives the session state machine for one viewer. It is safe for concurrent use.
type Client struct {
	config    Config
	gateway   gateway.Gateway
	store     credstore.Store
	logger    *zap.Logger
	metrics   *Metrics
	audit     *internalaudit.Dispatcher
	refresher *refresh.Coordinator
	flows     flows.Deps
	now       func() time.Time

	mu    sync.Mutex
	state session.Session
	// epoch moves on every LoginStart and Logout. Gateway answers carry the epoch they were
	// requested in and are dropped when it moved.
	epoch uint64

	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[uint64]func(Session)
	nextSub  uint64

	// pendingClear is set while a clear of the credential store keeps failing.
	pendingClear bool

	bootstrapOnce    sync.Once
	bootstrapOutcome BootstrapOutcome
}

type transition struct {
	prev  session.Session
	next  session.Session
	epoch uint64
}

// dispatch applies ev and its storage effect atomically with respect to other transitions.
// When guarded is true the transition only happens if the epoch still equals epoch.
//
// A token pair that cannot be persisted is never committed: LoginSuccess falls back to
// LoginFailure and RefreshSuccess to RefreshFailure, and the returned error wraps
// ErrCredentialStore. The fallback transition is what tr.next reports.
func (c *Client) dispatch(ctx context.Context, ev session.Event, epoch uint64, guarded bool) (transition, error) {
	c.mu.Lock()
	if guarded && epoch != c.epoch {
		tr := transition{prev: c.state.Clone(), next: c.state.Clone(), epoch: c.epoch}
		c.mu.Unlock()
		c.metrics.Inc(MetricStaleResultDiscarded)
		c.logger.Debug("discarding stale gateway result",
			zap.String("event", session.EventName(ev)),
			zap.Uint64("requested_epoch", epoch),
			zap.Uint64("current_epoch", tr.epoch),
		)
		return tr, ErrStaleResult
	}

	prev := c.state
	next, effect, err := session.Reduce(prev, ev)
	if err != nil {
		tr := transition{prev: prev.Clone(), next: prev.Clone(), epoch: c.epoch}
		c.mu.Unlock()
		return tr, err
	}

	var failure error
	if werr := c.applyEffect(ctx, effect); werr != nil {
		if fallback := persistFallback(ev); fallback != nil {
			c.logger.Warn("token pair not persisted, abandoning transition",
				zap.String("event", session.EventName(ev)),
				zap.String("fallback", session.EventName(fallback)),
				zap.Error(werr),
			)
			failure = fmt.Errorf("%w: %w", ErrCredentialStore, werr)
			ev = fallback
			if next, effect, err = session.Reduce(prev, ev); err == nil {
				_ = c.applyEffect(ctx, effect)
			}
		}
	}
	switch ev.(type) {
	case session.LoginStart, session.Logout:
		c.epoch++
	}
	c.state = next
	tr := transition{prev: prev.Clone(), next: next.Clone(), epoch: c.epoch}

	c.notifyMu.Lock()
	c.mu.Unlock()
	c.notify(tr.next)
	c.notifyMu.Unlock()

	return tr, failure
}

// persistFallback names the event committed instead of ev when ev's token pair could not be
// written. Events without a pair have no fallback.
func persistFallback(ev session.Event) session.Event {
	switch ev.(type) {
	case session.LoginSuccess:
		return session.LoginFailure{Message: MessageUnavailable}
	case session.RefreshSuccess:
		return session.RefreshFailure{}
	default:
		return nil
	}
}

// clearAttempts bounds how often one clear is retried before it is left pending.
const clearAttempts = 3

// applyEffect is the only writer of the credential store and runs with c.mu held. A clear that
// keeps failing is remembered and retried before the next write, at bootstrap and on Close, so
// credentials from a session the viewer left are never restored.
func (c *Client) applyEffect(ctx context.Context, effect session.Effect) error {
	ctx = context.WithoutCancel(ctx)
	if c.pendingClear && effect.Kind != session.EffectNone && effect.Kind != session.EffectClear {
		c.clearStoreLocked(ctx)
	}

	var err error
	switch effect.Kind {
	case session.EffectNone:
		return nil
	case session.EffectPersistTokens:
		err = c.store.SaveTokens(ctx, effect.Tokens)
	case session.EffectPersistLogin:
		if err = c.store.SaveTokens(ctx, effect.Tokens); err == nil && effect.User != nil {
			err = c.store.SaveUser(ctx, *effect.User)
		}
	case session.EffectCacheUser:
		if effect.User != nil {
			err = c.store.SaveUser(ctx, *effect.User)
		}
	case session.EffectClear:
		err = c.clearStoreLocked(ctx)
	}
	if err != nil {
		c.metrics.Inc(MetricStoreWriteFailure)
		c.logger.Warn("credential store write failed", zap.Uint8("effect", uint8(effect.Kind)), zap.Error(err))
	}
	return err
}

// clearStoreLocked removes persisted credentials, retrying a few times. On failure the clear
// stays pending. c.mu must be held.
func (c *Client) clearStoreLocked(ctx context.Context) error {
	var err error
	for range clearAttempts {
		if err = c.store.Clear(ctx); err == nil {
			c.pendingClear = false
			return nil
		}
	}
	if !c.pendingClear {
		c.logger.Error("persisted credentials could not be cleared; clear left pending", zap.Error(err))
	}
	c.pendingClear = true
	return err
}

// flushPendingClear retries an outstanding clear. It reports whether the store is known clean
// of credentials the viewer logged out of.
func (c *Client) flushPendingClear(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pendingClear {
		return true
	}
	return c.clearStoreLocked(context.WithoutCancel(ctx)) == nil
}

func (c *Client) currentEpoch() (session.Session, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone(), c.epoch
}

// Session returns a snapshot of the current session.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Role returns the viewer's role while authenticated or refreshing.
func (c *Client) Role() (Role, bool) {
	return c.Session().Role()
}

// Subscribe registers fn to receive every new session snapshot in transition order. fn runs
// synchronously and must not call Login, Logout, DismissError or refresh methods directly.
func (c *Client) Subscribe(fn func(Session)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

func (c *Client) notify(s session.Session) {
	c.subsMu.Lock()
	fns := make([]func(Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(s.Clone())
	}
}

// DismissError returns an errored session to unauthenticated.
func (c *Client) DismissError(ctx context.Context) error {
	_, err := c.dispatch(ctx, session.ErrorDismissed{}, 0, false)
	return err
}

// Metrics returns the client's metrics; never nil.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// MetricsSnapshot copies the current metrics for exporters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// MetricsView returns the metrics snapshot together with the session status and store backend
// for exporters.
func (c *Client) MetricsView() MetricsView {
	return MetricsView{
		Snapshot:     c.metrics.Snapshot(),
		AuditDropped: c.audit.Dropped(),
		Status:       c.Session().Status,
		StoreBackend: credstore.BackendOf(c.store),
	}
}

// AuditDropped returns how many audit events were dropped under backpressure.
func (c *Client) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close retries a pending credential clear and flushes pending audit events. The Client stays
// usable for reads.
func (c *Client) Close() {
	if !c.flushPendingClear(context.Background()) {
		c.logger.Error("closing with persisted credentials that could not be cleared")
	}
	c.audit.Close()
}

func (c *Client) emitAudit(ctx context.Context, eventType string, success bool, user *User, err error, metadata map[string]string) {
	if c.audit == nil {
		return
	}
	ev := internalaudit.Event{
		EventType: eventType,
		Success:   success,
		Metadata:  metadata,
	}
	if user != nil {
		ev.UserID = user.ID
		ev.Role = string(user.Role)
	}
	if err != nil {
		ev.Error = err.Error()
	}
	c.audit.Emit(ctx, ev)
}

func userField(u *User) zap.Field {
	if u == nil {
		return zap.Skip()
	}
	return zap.String("user_id", u.ID)
}
