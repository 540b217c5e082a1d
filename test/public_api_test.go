package test

import (
	"context"
	"net/http"
	"testing"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/guard"
	"github.com/MrEthical07/goAuthClient/middleware"
	"github.com/MrEthical07/goAuthClient/session"
)

// This test guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = dashauth.New
	_ = dashauth.ConfigFromEnv

	var _ *dashauth.Client
	var _ dashauth.Config
	var _ dashauth.Session = session.Session{}
	var _ dashauth.Credentials = gateway.Credentials{}
	var _ dashauth.AuditSink
	var _ credstore.Store = credstore.NewMemoryStore()
	var _ gateway.Gateway

	var _ error = dashauth.ErrCredentialsRequired
	var _ error = dashauth.ErrInvalidCredentials
	var _ error = dashauth.ErrNetworkFailure
	var _ error = dashauth.ErrSessionExpired
	var _ error = dashauth.ErrNotAuthenticated
	var _ error = dashauth.ErrStaleResult

	var _ func(*dashauth.Client, ...dashauth.Role) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*dashauth.Client) func(http.Handler) http.Handler = middleware.RequireAuthenticated
	var _ func(*dashauth.Client, dashauth.Role) func(http.Handler) http.Handler = middleware.RequireRole

	var _ func(session.Session, guard.Query, guard.Landing) guard.Decision = guard.Decide
	var _ func(*dashauth.Client, context.Context, dashauth.Credentials) (dashauth.User, error) = (*dashauth.Client).Login
	var _ func(*dashauth.Client, context.Context) = (*dashauth.Client).Logout
	var _ func(*dashauth.Client, context.Context) dashauth.BootstrapOutcome = (*dashauth.Client).Bootstrap
	var _ func(*dashauth.Client, context.Context) (string, error) = (*dashauth.Client).EnsureFreshToken
}
