package middleware

import (
	"net/http"

	dashauth "github.com/MrEthical07/goAuthClient"
)

// RequireAuthenticated admits any signed-in viewer regardless of role.
func RequireAuthenticated(client *dashauth.Client) func(http.Handler) http.Handler {
	return Guard(client)
}

// RequireRole admits only viewers holding role.
func RequireRole(client *dashauth.Client, role dashauth.Role) func(http.Handler) http.Handler {
	return Guard(client, role)
}
