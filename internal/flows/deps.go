package flows

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goAuthClient/gateway"
)

// Deps groups flow dependency sets. The Client builds this once and delegates to the matching
// flow.
type Deps struct {
	Login     LoginDeps
	Logout    LogoutDeps
	Bootstrap BootstrapDeps
	Refresh   RefreshDeps
}

// ErrGatewayPanic wraps a panic raised inside a gateway call. It classifies as a network
// failure so the session still reaches a terminal state.
var ErrGatewayPanic = errors.New("gateway call panicked")

// GatewayErrorKind is the coarse class of a gateway error.
type GatewayErrorKind int

const (
	GatewayErrorNone GatewayErrorKind = iota
	GatewayErrorInvalidCredentials
	GatewayErrorUnauthorized
	GatewayErrorMalformed
	GatewayErrorNetwork
)

// ClassifyGatewayError maps err onto the gateway error taxonomy. Unknown errors count as
// network failures.
func ClassifyGatewayError(err error) GatewayErrorKind {
	switch {
	case err == nil:
		return GatewayErrorNone
	case errors.Is(err, gateway.ErrInvalidCredentials):
		return GatewayErrorInvalidCredentials
	case errors.Is(err, gateway.ErrUnauthorized):
		return GatewayErrorUnauthorized
	case errors.Is(err, gateway.ErrMalformedResponse):
		return GatewayErrorMalformed
	default:
		return GatewayErrorNetwork
	}
}

func timed(now func() time.Time, observe func(time.Duration)) func() {
	if now == nil || observe == nil {
		return func() {}
	}
	start := now()
	return func() { observe(now().Sub(start)) }
}

// contain runs one gateway call and turns a panic into an ErrGatewayPanic error.
func contain[T any](call func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("%w: %v", ErrGatewayPanic, r)
		}
	}()
	return call()
}
