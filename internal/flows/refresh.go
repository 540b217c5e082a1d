package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/session"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureMissingToken
	RefreshFailureRejected
	RefreshFailureNetwork
	RefreshFailureMalformed
)

// RefreshResult carries either the rotated token pair or failure metadata.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error
	Tokens  session.TokenPair
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	RefreshToken   func(context.Context, string) (session.TokenPair, error)
	Now            func() time.Time
	ObserveLatency func(time.Duration)
}

// RunRefresh exchanges refreshToken for a new pair. It makes exactly one gateway call.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	if refreshToken == "" {
		return RefreshResult{Failure: RefreshFailureMissingToken, Err: gateway.ErrUnauthorized}
	}

	done := timed(deps.Now, deps.ObserveLatency)
	tokens, err := contain(func() (session.TokenPair, error) { return deps.RefreshToken(ctx, refreshToken) })
	done()

	if err == nil {
		err = gateway.ValidateTokenPair(tokens)
	}
	switch ClassifyGatewayError(err) {
	case GatewayErrorNone:
		return RefreshResult{Tokens: tokens}
	case GatewayErrorUnauthorized, GatewayErrorInvalidCredentials:
		return RefreshResult{Failure: RefreshFailureRejected, Err: err}
	case GatewayErrorMalformed:
		return RefreshResult{Failure: RefreshFailureMalformed, Err: err}
	default:
		return RefreshResult{Failure: RefreshFailureNetwork, Err: err}
	}
}
