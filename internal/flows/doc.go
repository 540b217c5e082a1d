// Package flows contains pure-function orchestrators for every Client operation that talks to
// the auth gateway.
//
// Each flow function (RunLogin, RunBootstrap, RunRefresh, RunLogout) accepts a typed dependency
// struct and returns a result carrying a failure kind instead of mutating anything. The Client
// maps kinds to session events, errors, metrics and audit records.
//
// # Architecture boundaries
//
// Flow functions call the gateway and read the credential store through dependency functions.
// They never write the credential store and never touch session state; the Client is the only
// writer of both.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goAuthClient (to avoid import cycles).
//   - Retry gateway calls.
package flows
