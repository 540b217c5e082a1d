package main

import (
	"fmt"
	"net/http"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway/httpgateway"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions are the persistent flags shared by every subcommand. Empty values keep what
// DASHAUTH_* variables or the defaults provide.
type rootOptions struct {
	gatewayURL string
	backend    string
	filePath   string
	redisAddr  string
	verbose    bool
}

// app is a built client plus everything that must be released with it.
type app struct {
	client *dashauth.Client
	config dashauth.Config
	closer func()
}

func (a *app) Close() {
	a.client.Close()
	if a.closer != nil {
		a.closer()
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "dashauth",
		Short: "Session client for the campus dashboard auth gateway",
		Long: `dashauth signs in to the dashboard auth gateway, keeps the session in a local
credential store and answers route-guard questions for the signed-in viewer.

Configuration comes from DASHAUTH_* environment variables; flags override them.

Examples:
  # Start a local gateway with the development accounts
  dashauth serve-fake --addr :8080

  # Sign in and show where the viewer lands
  dashauth login --email admin@campus.test --password admin-pass

  # Ask whether the viewer may open a page
  dashauth can /admin/settings --role admin
`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.gatewayURL, "gateway", "", "auth gateway base URL")
	flags.StringVar(&opts.backend, "store", "", "credential store backend: memory, file or redis")
	flags.StringVar(&opts.filePath, "store-file", "", "credential file for the file store")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "redis address for the redis store")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log client activity to stderr")

	cmd.AddCommand(
		newLoginCmd(opts),
		newWhoamiCmd(opts),
		newLogoutCmd(opts),
		newRefreshCmd(opts),
		newCanCmd(opts),
		newServeFakeCmd(),
	)
	return cmd
}

func (o *rootOptions) config() (dashauth.Config, error) {
	cfg, err := dashauth.ConfigFromEnv()
	if err != nil {
		return dashauth.Config{}, err
	}
	if o.gatewayURL != "" {
		cfg.Gateway.BaseURL = o.gatewayURL
	}
	if o.backend != "" {
		cfg.Store.Backend = o.backend
	}
	if o.filePath != "" {
		cfg.Store.FilePath = o.filePath
	}
	if o.redisAddr != "" {
		cfg.Store.RedisAddr = o.redisAddr
	}
	if err := cfg.Validate(); err != nil {
		return dashauth.Config{}, err
	}
	return cfg, nil
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	if !o.verbose {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// open builds a Client from flags and environment and restores any persisted session.
func (o *rootOptions) open(cmd *cobra.Command) (*app, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	logger, err := o.logger()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	gw, err := httpgateway.New(cfg.Gateway.BaseURL,
		httpgateway.WithHTTPClient(&http.Client{Timeout: cfg.Gateway.Timeout}),
		httpgateway.WithUserAgent("dashauth-cli"),
	)
	if err != nil {
		return nil, err
	}
	store, closer, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	b := dashauth.New().WithConfig(cfg).WithGateway(gw).WithStore(store).WithLogger(logger)
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(dashauth.NewZapSink(logger.Named("audit")))
	}
	client, err := b.Build()
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, err
	}

	a := &app{client: client, config: cfg, closer: closer}
	client.Bootstrap(cmd.Context())
	return a, nil
}

func openStore(cfg dashauth.StoreConfig) (credstore.Store, func(), error) {
	switch cfg.Backend {
	case dashauth.StoreMemory:
		return credstore.NewMemoryStore(), nil, nil
	case dashauth.StoreRedis:
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.RedisAddr}})
		return credstore.NewRedisStore(rdb, cfg.Prefix, cfg.TTL), func() { _ = rdb.Close() }, nil
	default:
		return credstore.NewFileStore(cfg.FilePath), nil, nil
	}
}

func statusLine(s dashauth.Session) string {
	if s.User == nil {
		return s.Status.String()
	}
	return fmt.Sprintf("%s as %s (%s)", s.Status, s.User.Email, s.User.Role)
}
