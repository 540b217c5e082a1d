// Package internal holds packages private to the client module.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: gateway call orchestration for login, logout, bootstrap and refresh
//
// # What this package must NOT do
//
//   - Export types that appear in the public client API.
//   - Be imported by any package outside this module.
package internal
