// Package jwt issues and verifies access tokens for the fake auth gateway and lets the
// client peek at an access token's expiry without verifying it.
//
// # Architecture boundaries
//
// The client never trusts claims it reads here for authorization; [PeekExpiry] only drives
// proactive refresh. Verification with keys happens in [Manager.ParseAccess], which only the
// fake gateway uses.
//
// # What this package must NOT do
//
//   - Import goAuthClient, session or gateway.
//   - Perform I/O.
package jwt
