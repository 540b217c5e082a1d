package refresh

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goAuthClient/session"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a refresh when the coordinator is built with a non-positive timeout.
const DefaultTimeout = 15 * time.Second

// Func performs one refresh.
type Func func(ctx context.Context) (session.TokenPair, error)

// Outcome is the result every waiter of one refresh receives.
type Outcome struct {
	Tokens session.TokenPair
	Err    error
}

// Coordinator deduplicates concurrent refreshes. The zero value is not usable; use [New].
type Coordinator struct {
	group   singleflight.Group
	timeout time.Duration

	executions atomic.Int64
	joined     atomic.Int64
}

// New returns a Coordinator whose refreshes are bounded by timeout.
func New(timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{timeout: timeout}
}

// Do runs fn unless a refresh for the same session generation is already in flight, in which
// case it waits for that one. Callers from different generations never share an outcome.
// shared reports whether the outcome was delivered to more than one caller.
func (c *Coordinator) Do(ctx context.Context, generation uint64, fn Func) (out Outcome, shared bool) {
	ch := c.group.DoChan(strconv.FormatUint(generation, 10), func() (any, error) {
		c.executions.Add(1)
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		tokens, err := fn(runCtx)
		return Outcome{Tokens: tokens, Err: err}, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.joined.Add(1)
		}
		return res.Val.(Outcome), res.Shared
	case <-ctx.Done():
		return Outcome{Err: ctx.Err()}, false
	}
}

// Executions returns how many refreshes have actually run.
func (c *Coordinator) Executions() int64 {
	return c.executions.Load()
}

// SharedDeliveries returns how many callers received a shared outcome.
func (c *Coordinator) SharedDeliveries() int64 {
	return c.joined.Load()
}
