package goAuthClient

import "errors"

var (
	// ErrCredentialsRequired is returned by Login when email or password is empty or the email
	// is not email-shaped. The session is left untouched.
	ErrCredentialsRequired = errors.New("email and password are required")
	// ErrInvalidCredentials is returned by Login when the gateway rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNetworkFailure is returned by Login when the gateway is unreachable or answers with an
	// unusable response.
	ErrNetworkFailure = errors.New("auth gateway unavailable")
	// ErrSessionExpired is returned to every refresh waiter when the refresh was rejected and
	// the session was ended.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotAuthenticated is returned by operations that need a session when there is none.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrLoginInProgress is returned by Login while another login is pending.
	ErrLoginInProgress = errors.New("login already in progress")
	// ErrAlreadyAuthenticated is returned by Login when a session already exists.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrStaleResult is returned when a gateway answer arrived after a newer login or logout
	// superseded the operation that asked for it.
	ErrStaleResult = errors.New("result superseded by a newer session change")
	// ErrClientNotReady is returned by Build when a required dependency is missing.
	ErrClientNotReady = errors.New("client not ready")
	// ErrCredentialStore wraps a credential store write that failed. A login or refresh that
	// hits it does not take effect; the session falls back to ERROR or UNAUTHENTICATED.
	ErrCredentialStore = errors.New("credential store write failed")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid config")
)

const (
	// MessageInvalidCredentials is the Session.Error text after rejected credentials.
	MessageInvalidCredentials = "Invalid email or password."
	// MessageUnavailable is the Session.Error text after a network or server failure.
	MessageUnavailable = "Unable to sign in right now. Please try again."
)
