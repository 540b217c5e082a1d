// Package credstore persists the client's credentials across restarts: the current
// access token, refresh token and cached user record.
//
// # Keys
//
// Three logical keys are used: access-token, refresh-token and cached-user, each under a
// configurable prefix. The role is only ever stored inside the cached-user record.
//
// # Backends
//
//   - [MemoryStore]: process-local, for tests and development.
//   - [FileStore]: a single JSON document written atomically, the durable choice for CLIs.
//   - [RedisStore]: shared storage; the token pair is written in one MULTI block and the user
//     is encoded with the versioned binary codec in encoder.go.
//
// # What this package must NOT do
//
//   - Decide when to write. Only the Client's effect applier calls the mutating methods.
//   - Write half of a token pair.
//   - Import goAuthClient or gateway.
package credstore
