package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goAuthClient/session"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidCredentials is returned by Login when the gateway rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when a bearer or refresh token is not accepted.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetworkFailure is returned when the gateway cannot be reached or fails server-side.
	ErrNetworkFailure = errors.New("auth gateway unreachable")
	// ErrMalformedResponse is returned when a response does not match the schema.
	ErrMalformedResponse = errors.New("malformed auth gateway response")
)

// Credentials is the login request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is a successful login.
type LoginResponse struct {
	User         session.User `json:"user" validate:"required"`
	AccessToken  string       `json:"accessToken" validate:"required"`
	RefreshToken string       `json:"refreshToken" validate:"required"`
}

// Tokens returns the token pair carried by r.
func (r LoginResponse) Tokens() session.TokenPair {
	return session.TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// Gateway is the remote auth service.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (LoginResponse, error)
	Logout(ctx context.Context, accessToken string) error
	GetCurrentUser(ctx context.Context, accessToken string) (session.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (session.TokenPair, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateCredentials trims the email and checks both fields.
func ValidateCredentials(creds Credentials) (Credentials, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validate.Struct(creds); err != nil {
		return creds, err
	}
	return creds, nil
}

// ValidateLoginResponse checks a decoded login response.
func ValidateLoginResponse(resp LoginResponse) error {
	return schemaError("login response", validate.Struct(resp))
}

// ValidateUser checks a decoded user.
func ValidateUser(user session.User) error {
	return schemaError("user", validate.Struct(user))
}

// ValidateTokenPair checks a decoded token pair.
func ValidateTokenPair(tokens session.TokenPair) error {
	return schemaError("token pair", validate.Struct(tokens))
}

func schemaError(what string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s: field %s failed %q", ErrMalformedResponse, what, verrs[0].Namespace(), verrs[0].Tag())
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, what, err)
}
