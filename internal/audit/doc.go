// Package audit implements async event dispatching for session lifecycle events.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, zap, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured record with timestamp, type, user, role, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the client does.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goAuthClient or any sibling internal package.
//   - Record access or refresh tokens.
package audit
