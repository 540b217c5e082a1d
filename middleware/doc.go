// Package middleware adapts the route guard to net/http for server-rendered dashboards.
//
// # Guards
//
//   - [Guard]: admits viewers holding one of the listed roles.
//   - [RequireAuthenticated]: admits any signed-in viewer.
//   - [RequireRole]: admits a single role.
//   - [RedirectAuthenticated]: sends signed-in viewers away from the login page.
//
// Each guard takes a session snapshot from the Client, asks guard.Decide, and either
// serves the request with the snapshot in its context or answers with a redirect.
// While a token refresh is in flight the guard answers 503 with Retry-After instead of
// redirecting to login.
//
// # What this package must NOT do
//
//   - Call the auth gateway or touch the credential store.
//   - Make decisions other than the ones guard.Decide returns.
package middleware
