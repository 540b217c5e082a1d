package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/session"
)

// LoginFailureKind classifies login flow failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureInvalidCredentials
	LoginFailureNetwork
	LoginFailureMalformed
)

// LoginResult carries either the authenticated user and tokens or failure metadata.
type LoginResult struct {
	Failure LoginFailureKind
	Err     error
	User    session.User
	Tokens  session.TokenPair
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Login          func(context.Context, gateway.Credentials) (gateway.LoginResponse, error)
	Now            func() time.Time
	ObserveLatency func(time.Duration)
}

// RunLogin submits already validated credentials and re-checks the response shape, so a
// gateway that skips validation cannot hand the client a nil user or half a token pair.
func RunLogin(ctx context.Context, creds gateway.Credentials, deps LoginDeps) LoginResult {
	done := timed(deps.Now, deps.ObserveLatency)
	resp, err := contain(func() (gateway.LoginResponse, error) { return deps.Login(ctx, creds) })
	done()

	if err == nil {
		err = gateway.ValidateLoginResponse(resp)
	}
	switch ClassifyGatewayError(err) {
	case GatewayErrorNone:
		return LoginResult{User: resp.User, Tokens: resp.Tokens()}
	case GatewayErrorInvalidCredentials, GatewayErrorUnauthorized:
		return LoginResult{Failure: LoginFailureInvalidCredentials, Err: err}
	case GatewayErrorMalformed:
		return LoginResult{Failure: LoginFailureMalformed, Err: err}
	default:
		return LoginResult{Failure: LoginFailureNetwork, Err: err}
	}
}
