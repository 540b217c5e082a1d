package session

import "strings"

// Role is one of the closed set of dashboard roles.
type Role string

const (
	// RoleStudent is the student role.
	RoleStudent Role = "student"
	// RoleAdvisor is the advisor role.
	RoleAdvisor Role = "advisor"
	// RoleAdmin is the admin role.
	RoleAdmin Role = "admin"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleStudent, RoleAdvisor, RoleAdmin}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdvisor, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole normalises s and returns the matching role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// User is the authenticated viewer. A User is immutable for the lifetime of a session
// and replaced wholesale when re-fetched.
type User struct {
	ID          string `json:"id" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Role        Role   `json:"role" validate:"required,oneof=student advisor admin"`
	DisplayName string `json:"name,omitempty"`
}

// TokenPair is an access/refresh token pair. Both halves are opaque to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Complete reports whether both halves are present.
func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Status is the lifecycle status of a [Session].
type Status uint8

const (
	// StatusUnauthenticated is the initial status.
	StatusUnauthenticated Status = iota
	// StatusAuthenticating is held while a login call is in flight.
	StatusAuthenticating
	// StatusAuthenticated means a user is signed in.
	StatusAuthenticated
	// StatusRefreshing is held while a token refresh is in flight.
	StatusRefreshing
	// StatusError is entered after a failed login; recoverable by retrying or dismissing.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusRefreshing:
		return "refreshing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Session is the in-memory record of whether, and as whom, this client is signed in.
//
// Invariants: StatusAuthenticated and StatusRefreshing imply User != nil;
// StatusUnauthenticated implies User == nil.
type Session struct {
	Status Status
	User   *User
	Error  string
}

// Authenticated reports whether the session may be treated as signed in.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// Role returns the signed-in user's role, if any.
func (s Session) Role() (Role, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.Role, true
}

// Clone returns a copy that shares no pointers with s.
func (s Session) Clone() Session {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
