package goAuthClient

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/guard"
)

// Config is the full client configuration. Build one with [DefaultConfig] or [ConfigFromEnv]
// and adjust fields before passing it to [Builder.WithConfig].
type Config struct {
	Gateway GatewayConfig `envPrefix:"GATEWAY_"`
	Store   StoreConfig   `envPrefix:"STORE_"`
	Refresh RefreshConfig `envPrefix:"REFRESH_"`
	Logout  LogoutConfig  `envPrefix:"LOGOUT_"`
	Landing guard.Landing `envPrefix:"LANDING_"`
	Audit   AuditConfig   `envPrefix:"AUDIT_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

/*
====================================
GATEWAY CONFIG
====================================
*/

// GatewayConfig locates the auth gateway. Only composition roots read it; a Client built
// with an explicit gateway ignores it.
type GatewayConfig struct {
	BaseURL string        `env:"URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

/*
====================================
STORE CONFIG
====================================
*/

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// StoreConfig selects the persisted credential store backend.
type StoreConfig struct {
	Backend string `env:"BACKEND" envDefault:"file"`
	// FilePath is where the file backend keeps its document. It must be set for that backend;
	// DefaultConfig fills it with [DefaultFilePath].
	FilePath  string        `env:"FILE_PATH"`
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Prefix    string        `env:"PREFIX" envDefault:"dashauth"`
	TTL       time.Duration `env:"TTL" envDefault:"0s"`
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls token refresh.
type RefreshConfig struct {
	// Timeout bounds one shared refresh regardless of which caller started it.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
	// Skew is how close to expiry an access token may be before AccessToken refreshes it.
	Skew time.Duration `env:"SKEW" envDefault:"30s"`
	// RetryOnUnauthorized lets Transport and Do refresh and replay once after a 401.
	RetryOnUnauthorized bool `env:"RETRY_ON_UNAUTHORIZED" envDefault:"true"`
}

/*
====================================
LOGOUT CONFIG
====================================
*/

// LogoutConfig controls the best-effort remote logout.
type LogoutConfig struct {
	Remote        bool          `env:"REMOTE" envDefault:"true"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"5s"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED" envDefault:"false"`
	BufferSize int  `env:"BUFFER_SIZE" envDefault:"256"`
	DropIfFull bool `env:"DROP_IF_FULL" envDefault:"true"`
}

// MetricsConfig controls in-process metrics.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED" envDefault:"true"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS" envDefault:"false"`
}

// DefaultFilePath is the file store location under the user's config directory, or under the
// temp directory when the platform has none.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "dashauth", "session.json")
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Backend:   StoreFile,
			FilePath:  DefaultFilePath(),
			RedisAddr: "localhost:6379",
			Prefix:    "dashauth",
		},
		Refresh: RefreshConfig{
			Timeout:             15 * time.Second,
			Skew:                30 * time.Second,
			RetryOnUnauthorized: true,
		},
		Logout: LogoutConfig{
			Remote:        true,
			RemoteTimeout: 5 * time.Second,
		},
		Landing: guard.DefaultLanding(),
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Config contains no reference types; the copy is a full clone.
func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL != "" {
		u, err := url.Parse(c.Gateway.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: gateway url %q must be an absolute http(s) URL", ErrInvalidConfig, c.Gateway.BaseURL)
		}
	}
	if c.Gateway.Timeout < 0 {
		return fmt.Errorf("%w: gateway timeout must be >= 0", ErrInvalidConfig)
	}

	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Store.Backend == StoreFile && strings.TrimSpace(c.Store.FilePath) == "" {
		return fmt.Errorf("%w: file store requires a path", ErrInvalidConfig)
	}
	if c.Store.Backend == StoreRedis && strings.TrimSpace(c.Store.RedisAddr) == "" {
		return fmt.Errorf("%w: redis store requires an address", ErrInvalidConfig)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("%w: store ttl must be >= 0", ErrInvalidConfig)
	}

	if c.Refresh.Timeout <= 0 {
		return fmt.Errorf("%w: refresh timeout must be > 0", ErrInvalidConfig)
	}
	if c.Refresh.Skew < 0 || c.Refresh.Skew > 10*time.Minute {
		return fmt.Errorf("%w: refresh skew must be within [0, 10m]", ErrInvalidConfig)
	}
	if c.Logout.RemoteTimeout < 0 {
		return fmt.Errorf("%w: logout remote timeout must be >= 0", ErrInvalidConfig)
	}

	if err := c.Landing.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: audit buffer size must be > 0", ErrInvalidConfig)
	}
	return nil
}
