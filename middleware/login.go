package middleware

import (
	"net/http"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/guard"
)

// RedirectAuthenticated wraps the login page. A viewer who is already signed in is sent to the
// origin captured in the next query parameter, or to their landing path.
func RedirectAuthenticated(client *dashauth.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil || client.Session().Status != dashauth.StatusAuthenticated {
				next.ServeHTTP(w, r)
				return
			}
			origin := guard.OriginFromQuery(r.URL.Query(), client.Landing().Login)
			http.Redirect(w, r, client.PostLoginTarget(origin), http.StatusSeeOther)
		})
	}
}
