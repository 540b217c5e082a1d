// Package gateway defines the contract between the dashboard client and the remote auth
// service: login, logout, current-user lookup and token refresh.
//
// Implementations live in sub-packages: httpgateway talks JSON over HTTP, fake is an
// in-process stand-in for development and tests. Either is selected when the Client is
// built; the client never branches on which one it holds.
//
// Every payload crossing this boundary is checked with [ValidateLoginResponse],
// [ValidateUser] or [ValidateTokenPair]. A response that fails the schema is reported as
// [ErrMalformedResponse], never as a half-filled struct.
package gateway
