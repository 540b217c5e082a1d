package guard

import (
	"slices"

	"github.com/MrEthical07/goAuthClient/session"
)

// Kind is the outcome of a guard decision.
type Kind uint8

const (
	// Render shows the requested area.
	Render Kind = iota
	// RedirectLogin sends the viewer to login, preserving Origin.
	RedirectLogin
	// RedirectNeutral sends an authenticated viewer without the required role to their landing.
	RedirectNeutral
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectNeutral:
		return "redirect_neutral"
	default:
		return "unknown"
	}
}

// Query is one authorization check.
type Query struct {
	// RequiredRoles restricts the area; empty means any authenticated viewer.
	RequiredRoles []session.Role
	// RequestedPath is the path being navigated to.
	RequestedPath string
	// CapturedOrigin is an origin preserved by an earlier redirect. When set it wins over
	// RequestedPath so re-renders of the login view keep the first origin.
	CapturedOrigin string
}

// Decision is the result of [Decide].
type Decision struct {
	Kind Kind
	// Target is the redirect destination; empty for Render.
	Target string
	// Origin is the path to return to after login; only set for RedirectLogin.
	Origin string
	// Pending is true when the viewer is mid-refresh or mid-login. A rendering layer may hold
	// instead of following the redirect.
	Pending bool
}

// Decide evaluates q against s.
func Decide(s session.Session, q Query, landing Landing) Decision {
	if s.Status != session.StatusAuthenticated || s.User == nil {
		origin := SafeOrigin(q.CapturedOrigin, landing.Login)
		if origin == "" {
			origin = SafeOrigin(q.RequestedPath, landing.Login)
		}
		return Decision{
			Kind:    RedirectLogin,
			Target:  landing.Login,
			Origin:  origin,
			Pending: s.Status == session.StatusRefreshing || s.Status == session.StatusAuthenticating,
		}
	}

	if len(q.RequiredRoles) > 0 && !slices.Contains(q.RequiredRoles, s.User.Role) {
		return Decision{Kind: RedirectNeutral, Target: landing.PathFor(s.User.Role)}
	}
	return Decision{Kind: Render}
}

// RedirectURL is the full URL to navigate to for d, or "" for Render.
func (d Decision) RedirectURL() string {
	switch d.Kind {
	case RedirectLogin:
		return LoginURL(d.Target, d.Origin)
	case RedirectNeutral:
		return d.Target
	default:
		return ""
	}
}
