// Package refresh coordinates token refreshes so that at most one refresh is in flight per
// session generation.
//
// # Behavior
//
// Callers that arrive while a refresh is running wait for it and receive its outcome instead of
// starting their own. The running refresh is detached from the cancellation of whichever caller
// started it and bounded by the coordinator timeout; a caller whose context ends stops waiting
// and gets ctx.Err() while the refresh keeps going for everyone else. A new refresh starts only
// after the previous one has finished, so outcomes apply in the order refreshes were started.
//
// The generation is an opaque number the caller bumps whenever the session it refreshes for is
// replaced. A refresh still running for an older generation is never joined by a newer one.
//
// # Architecture boundaries
//
// This package owns deduplication only. Deciding whether a refresh is needed, calling the
// gateway and applying the outcome to the session belong to the client.
//
// # What this package must NOT do
//
//   - Import goAuthClient or gateway.
//   - Retry a failed refresh.
package refresh
