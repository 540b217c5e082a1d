// Package session holds the in-memory session model of the dashboard client and the pure
// transition function that drives it.
//
// # State machine
//
// A [Session] moves between five statuses (unauthenticated, authenticating, authenticated,
// refreshing, error) only through the closed [Event] set. [Reduce] folds one event into a
// session and reports the persistence [Effect] the caller must apply.
//
// # Architecture boundaries
//
// This package performs no I/O. Applying effects to durable storage, talking to the auth
// gateway and ordering asynchronous completions is the Client's job.
//
// # What this package must NOT do
//
//   - Import goAuthClient, credstore or gateway.
//   - Hold mutable package-level state.
//   - Patch a User field-by-field (users are replaced wholesale).
package session
