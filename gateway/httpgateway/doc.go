// Package httpgateway is the HTTP implementation of gateway.Gateway.
//
// Endpoints (relative to the base URL):
//
//	POST /auth/login    {"email","password"}       -> {user, accessToken, refreshToken}
//	POST /auth/logout   Authorization: Bearer      -> empty data
//	GET  /auth/me       Authorization: Bearer      -> user
//	POST /auth/refresh  {"refreshToken"}           -> {accessToken, refreshToken}
//
// Every response body is an envelope {"status","message","data"}. A 2xx response whose status is
// not "success" is a malformed response.
package httpgateway
