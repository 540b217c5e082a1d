package goAuthClient

import (
	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/session"
)

// Role, User, Session and the rest alias the session and gateway types so that most callers
// only import this package.
type (
	Role        = session.Role
	User        = session.User
	TokenPair   = session.TokenPair
	Session     = session.Session
	Status      = session.Status
	Credentials = gateway.Credentials
)

const (
	RoleStudent = session.RoleStudent
	RoleAdvisor = session.RoleAdvisor
	RoleAdmin   = session.RoleAdmin

	StatusUnauthenticated = session.StatusUnauthenticated
	StatusAuthenticating  = session.StatusAuthenticating
	StatusAuthenticated   = session.StatusAuthenticated
	StatusRefreshing      = session.StatusRefreshing
	StatusError           = session.StatusError
)

// BootstrapOutcome is the result of [Client.Bootstrap].
type BootstrapOutcome uint8

const (
	// BootstrapNoToken means nothing was persisted; the viewer stays unauthenticated.
	BootstrapNoToken BootstrapOutcome = iota + 1
	// BootstrapRestored means the persisted token still identifies a user.
	BootstrapRestored
	// BootstrapCleared means the persisted credentials were unusable and were removed.
	BootstrapCleared
	// BootstrapSuperseded means a login or logout happened while the check was in flight and its
	// answer was discarded.
	BootstrapSuperseded
)

func (o BootstrapOutcome) String() string {
	switch o {
	case BootstrapNoToken:
		return "no_token"
	case BootstrapRestored:
		return "restored"
	case BootstrapCleared:
		return "cleared"
	case BootstrapSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// ParseRole normalises s and returns the matching role.
func ParseRole(s string) (Role, bool) {
	return session.ParseRole(s)
}
