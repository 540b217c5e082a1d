package middleware

import (
	"net/http"
	"strconv"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/guard"
)

// RetryAfterPending is the Retry-After value sent while a token refresh is in flight.
const RetryAfterPending = 1

// Guard returns middleware that admits a request only when the client's viewer holds one of
// roles (any signed-in viewer when roles is empty). Unauthenticated requests are redirected to
// the login page with the requested path preserved; signed-in viewers lacking the role are
// redirected to their own landing path. Admitted requests carry the session snapshot, readable
// with [dashauth.ViewerFromContext].
func Guard(client *dashauth.Client, roles ...dashauth.Role) func(http.Handler) http.Handler {
	required := append([]dashauth.Role(nil), roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			s := client.Session()
			landing := client.Landing()
			d := guard.Decide(s, guard.Query{
				RequiredRoles: required,
				RequestedPath: r.URL.RequestURI(),
			}, landing)

			switch d.Kind {
			case guard.Render:
				next.ServeHTTP(w, r.WithContext(dashauth.WithViewer(r.Context(), s)))
			case guard.RedirectLogin:
				if d.Pending {
					w.Header().Set("Retry-After", strconv.Itoa(RetryAfterPending))
					http.Error(w, "session pending", http.StatusServiceUnavailable)
					return
				}
				http.Redirect(w, r, d.RedirectURL(), http.StatusSeeOther)
			default:
				http.Redirect(w, r, d.RedirectURL(), http.StatusSeeOther)
			}
		})
	}
}
