package flows

import (
	"context"
	"time"
)

// LogoutFailureKind classifies the remote half of logout. Local teardown never fails.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureSkipped
	LogoutFailureRemote
)

// LogoutResult reports how the best-effort remote logout went.
type LogoutResult struct {
	Failure LogoutFailureKind
	Err     error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Logout         func(context.Context, string) error
	RemoteTimeout  time.Duration
	Now            func() time.Time
	ObserveLatency func(time.Duration)
}

// RunLogout notifies the gateway that accessToken is no longer in use. The call is detached
// from ctx cancellation and bounded by RemoteTimeout so a caller leaving does not abort it.
func RunLogout(ctx context.Context, accessToken string, deps LogoutDeps) LogoutResult {
	if accessToken == "" || deps.Logout == nil {
		return LogoutResult{Failure: LogoutFailureSkipped}
	}

	callCtx := context.WithoutCancel(ctx)
	if deps.RemoteTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, deps.RemoteTimeout)
		defer cancel()
	}

	done := timed(deps.Now, deps.ObserveLatency)
	_, err := contain(func() (struct{}, error) { return struct{}{}, deps.Logout(callCtx, accessToken) })
	done()
	if err != nil {
		return LogoutResult{Failure: LogoutFailureRemote, Err: err}
	}
	return LogoutResult{}
}
