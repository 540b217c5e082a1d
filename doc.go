// Package goAuthClient is the session and authorization core of a multi-role academic
// dashboard used by students, advisors and admins.
//
// A [Client] owns the viewer's authentication lifecycle: login, logout, refresh of the access
// token and the one-time bootstrap that restores a session from persisted credentials. It is
// safe for concurrent use once built with [Builder.Build].
//
// # Architecture boundaries
//
// goAuthClient is the public surface. It exposes [Client], [Builder], [Config] and the session
// value types. The pure transition function lives in session, navigation decisions in guard,
// storage in credstore and the remote contract in gateway. Flow orchestration and audit
// dispatch live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Mutate session state outside the session.Reduce transition table.
//   - Write the credential store from anywhere but the effect applier.
//   - Surface bootstrap or remote-logout failures to the viewer.
//   - Retry a rejected refresh.
package goAuthClient
