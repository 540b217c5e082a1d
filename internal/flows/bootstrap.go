package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goAuthClient/credstore"
	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/session"
)

// BootstrapFailureKind classifies bootstrap outcomes for root-level mapping.
type BootstrapFailureKind int

const (
	BootstrapFailureNone BootstrapFailureKind = iota
	BootstrapFailureNoToken
	BootstrapFailureLoad
	BootstrapFailureUnauthorized
	BootstrapFailureNetwork
	BootstrapFailureMalformed
)

// BootstrapResult carries either the restored user or failure metadata.
type BootstrapResult struct {
	Failure     BootstrapFailureKind
	Err         error
	User        session.User
	AccessToken string
}

// BootstrapDeps captures bootstrap flow dependencies.
type BootstrapDeps struct {
	Load           func(context.Context) (credstore.Record, error)
	GetCurrentUser func(context.Context, string) (session.User, error)
	Now            func() time.Time
	ObserveLatency func(time.Duration)
}

// RunBootstrap checks whether persisted credentials still identify a user. The cached user is
// never trusted on its own; the gateway answer replaces it.
func RunBootstrap(ctx context.Context, deps BootstrapDeps) BootstrapResult {
	rec, err := deps.Load(ctx)
	if err != nil {
		return BootstrapResult{Failure: BootstrapFailureLoad, Err: err}
	}
	if !rec.HasAccessToken() {
		return BootstrapResult{Failure: BootstrapFailureNoToken}
	}

	done := timed(deps.Now, deps.ObserveLatency)
	user, err := contain(func() (session.User, error) { return deps.GetCurrentUser(ctx, rec.Tokens.AccessToken) })
	done()

	if err == nil {
		err = gateway.ValidateUser(user)
	}
	switch ClassifyGatewayError(err) {
	case GatewayErrorNone:
		return BootstrapResult{User: user, AccessToken: rec.Tokens.AccessToken}
	case GatewayErrorUnauthorized, GatewayErrorInvalidCredentials:
		return BootstrapResult{Failure: BootstrapFailureUnauthorized, Err: err}
	case GatewayErrorMalformed:
		return BootstrapResult{Failure: BootstrapFailureMalformed, Err: err}
	default:
		return BootstrapResult{Failure: BootstrapFailureNetwork, Err: err}
	}
}
