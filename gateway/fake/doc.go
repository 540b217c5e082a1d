// Package fake provides an in-process auth gateway for development ("mock login") and tests,
// plus a gin HTTP server exposing the same contract as the real gateway.
//
// Seed users carry argon2id password hashes. Access tokens are HS256 JWTs; refresh tokens are
// opaque UUIDs rotated on every refresh. Tests can revoke sessions, inject failures, block calls
// with hooks and read per-operation call counters.
package fake
