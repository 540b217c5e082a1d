package goAuthClient

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway"
	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/refresh"
	"github.com/MrEthical07/goAuthClient/session"
	"go.uber.org/zap"
)

// Builder assembles a [Client]. A Builder can build exactly once.
type Builder struct {
	config    Config
	gateway   gateway.Gateway
	store     credstore.Store
	logger    *zap.Logger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithGateway sets the auth gateway. Required.
func (b *Builder) WithGateway(g gateway.Gateway) *Builder {
	b.gateway = g
	return b
}

// WithStore sets the persisted credential store. Required.
func (b *Builder) WithStore(s credstore.Store) *Builder {
	b.store = s
	return b
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets the audit sink. Events are only dispatched when Config.Audit.Enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock replaces the time source used for expiry checks and latency metrics.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns a ready Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.gateway == nil {
		return nil, fmt.Errorf("%w: gateway is required", ErrClientNotReady)
	}
	if b.store == nil {
		return nil, fmt.Errorf("%w: credential store is required", ErrClientNotReady)
	}
	b.built = true

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	c := &Client{
		config:    cloneConfig(b.config),
		gateway:   b.gateway,
		store:     b.store,
		logger:    logger.Named("dashauth"),
		metrics:   NewMetrics(b.config.Metrics),
		refresher: refresh.New(b.config.Refresh.Timeout),
		now:       now,
		state:     session.Session{Status: session.StatusUnauthenticated},
		subs:      make(map[uint64]func(Session)),
	}
	c.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.auditSink)

	gatewayLatency := func(d time.Duration) { c.metrics.Observe(MetricGatewayLatency, d) }
	c.flows = flows.Deps{
		Login: flows.LoginDeps{
			Login:          b.gateway.Login,
			Now:            now,
			ObserveLatency: gatewayLatency,
		},
		Logout: flows.LogoutDeps{
			Logout:         b.gateway.Logout,
			RemoteTimeout:  b.config.Logout.RemoteTimeout,
			Now:            now,
			ObserveLatency: gatewayLatency,
		},
		Bootstrap: flows.BootstrapDeps{
			Load:           b.store.Load,
			GetCurrentUser: b.gateway.GetCurrentUser,
			Now:            now,
			ObserveLatency: gatewayLatency,
		},
		Refresh: flows.RefreshDeps{
			RefreshToken:   b.gateway.RefreshToken,
			Now:            now,
			ObserveLatency: func(d time.Duration) { c.metrics.Observe(MetricRefreshLatency, d) },
		},
	}
	if !b.config.Logout.Remote {
		c.flows.Logout.Logout = nil
	}

	return c, nil
}
