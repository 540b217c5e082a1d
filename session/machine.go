package session

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned by [Reduce] when an event is not accepted in the
// current status. The session is left unchanged.
var ErrInvalidTransition = errors.New("invalid session transition")

// Event is the closed set of inputs to the state machine. Only types declared in this
// package implement it.
type Event interface {
	eventName() string
}

// LoginStart is emitted before the gateway login call.
type LoginStart struct{}

// LoginSuccess carries the user and tokens returned by the gateway.
type LoginSuccess struct {
	User   User
	Tokens TokenPair
}

// LoginFailure carries the user-facing failure message.
type LoginFailure struct {
	Message string
}

// Logout tears the session down.
type Logout struct{}

// RefreshStart is emitted before the gateway refresh call.
type RefreshStart struct{}

// RefreshSuccess carries the rotated token pair.
type RefreshSuccess struct {
	Tokens TokenPair
}

// RefreshFailure ends the session after an unrecoverable refresh.
type RefreshFailure struct{}

// BootstrapRestored carries the user validated from persisted credentials at startup.
type BootstrapRestored struct {
	User User
}

// ErrorDismissed returns an errored session to unauthenticated.
type ErrorDismissed struct{}

func (LoginStart) eventName() string        { return "login_start" }
func (LoginSuccess) eventName() string      { return "login_success" }
func (LoginFailure) eventName() string      { return "login_failure" }
func (Logout) eventName() string            { return "logout" }
func (RefreshStart) eventName() string      { return "refresh_start" }
func (RefreshSuccess) eventName() string    { return "refresh_success" }
func (RefreshFailure) eventName() string    { return "refresh_failure" }
func (BootstrapRestored) eventName() string { return "bootstrap_restored" }
func (ErrorDismissed) eventName() string    { return "error_dismissed" }

// EventName returns the stable snake_case name of ev, used in logs and audit metadata.
func EventName(ev Event) string {
	if ev == nil {
		return ""
	}
	return ev.eventName()
}

// EffectKind names the persistence side effect of a transition.
type EffectKind uint8

const (
	// EffectNone requires no storage change.
	EffectNone EffectKind = iota
	// EffectPersistTokens writes Tokens as a unit.
	EffectPersistTokens
	// EffectPersistLogin writes Tokens as a unit and caches User.
	EffectPersistLogin
	// EffectCacheUser replaces the cached user.
	EffectCacheUser
	// EffectClear removes tokens and the cached user.
	EffectClear
)

// Effect describes what the caller must write to the credential store after a transition.
type Effect struct {
	Kind   EffectKind
	Tokens TokenPair
	User   *User
}

// Reduce applies ev to s. It is pure: the same inputs always give the same outputs.
func Reduce(s Session, ev Event) (Session, Effect, error) {
	switch e := ev.(type) {
	case LoginStart:
		if s.Status != StatusUnauthenticated && s.Status != StatusError {
			return s, Effect{}, rejected(s, ev)
		}
		return Session{Status: StatusAuthenticating}, Effect{}, nil

	case LoginSuccess:
		if s.Status != StatusAuthenticating {
			return s, Effect{}, rejected(s, ev)
		}
		if e.User.ID == "" || !e.User.Role.Valid() || !e.Tokens.Complete() {
			return s, Effect{}, fmt.Errorf("%w: incomplete login payload", ErrInvalidTransition)
		}
		u := e.User
		return Session{Status: StatusAuthenticated, User: &u},
			Effect{Kind: EffectPersistLogin, Tokens: e.Tokens, User: &u}, nil

	case LoginFailure:
		if s.Status != StatusAuthenticating {
			return s, Effect{}, rejected(s, ev)
		}
		if e.Message == "" {
			return s, Effect{}, fmt.Errorf("%w: login failure without message", ErrInvalidTransition)
		}
		return Session{Status: StatusError, Error: e.Message}, Effect{Kind: EffectClear}, nil

	case Logout:
		return Session{Status: StatusUnauthenticated}, Effect{Kind: EffectClear}, nil

	case RefreshStart:
		if s.Status != StatusAuthenticated || s.User == nil {
			return s, Effect{}, rejected(s, ev)
		}
		return Session{Status: StatusRefreshing, User: s.User}, Effect{}, nil

	case RefreshSuccess:
		if s.Status != StatusRefreshing {
			return s, Effect{}, rejected(s, ev)
		}
		if !e.Tokens.Complete() {
			return s, Effect{}, fmt.Errorf("%w: partial token pair", ErrInvalidTransition)
		}
		return Session{Status: StatusAuthenticated, User: s.User},
			Effect{Kind: EffectPersistTokens, Tokens: e.Tokens}, nil

	case RefreshFailure:
		if s.Status != StatusRefreshing {
			return s, Effect{}, rejected(s, ev)
		}
		return Session{Status: StatusUnauthenticated}, Effect{Kind: EffectClear}, nil

	case BootstrapRestored:
		if s.Status != StatusUnauthenticated && s.Status != StatusError {
			return s, Effect{}, rejected(s, ev)
		}
		if e.User.ID == "" || !e.User.Role.Valid() {
			return s, Effect{}, fmt.Errorf("%w: incomplete bootstrap user", ErrInvalidTransition)
		}
		u := e.User
		return Session{Status: StatusAuthenticated, User: &u},
			Effect{Kind: EffectCacheUser, User: &u}, nil

	case ErrorDismissed:
		if s.Status != StatusError {
			return s, Effect{}, rejected(s, ev)
		}
		return Session{Status: StatusUnauthenticated}, Effect{}, nil

	default:
		return s, Effect{}, fmt.Errorf("%w: unknown event", ErrInvalidTransition)
	}
}

func rejected(s Session, ev Event) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev.eventName(), s.Status)
}
