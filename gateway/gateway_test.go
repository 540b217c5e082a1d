package gateway

import (
	"errors"
	"testing"

	"github.com/MrEthical07/goAuthClient/session"
)

func TestValidateLoginResponse(t *testing.T) {
	ok := LoginResponse{
		User:         session.User{ID: "u-1", Email: "ada@campus.edu", Role: session.RoleStudent},
		AccessToken:  "a",
		RefreshToken: "r",
	}
	if err := ValidateLoginResponse(ok); err != nil {
		t.Fatalf("expected valid response, got %v", err)
	}

	cases := map[string]func(*LoginResponse){
		"missing access":  func(r *LoginResponse) { r.AccessToken = "" },
		"missing refresh": func(r *LoginResponse) { r.RefreshToken = "" },
		"missing user id": func(r *LoginResponse) { r.User.ID = "" },
		"bad email":       func(r *LoginResponse) { r.User.Email = "not-an-email" },
		"unknown role":    func(r *LoginResponse) { r.User.Role = "userRole" },
	}
	for name, mutate := range cases {
		resp := ok
		mutate(&resp)
		if err := ValidateLoginResponse(resp); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%s: expected ErrMalformedResponse, got %v", name, err)
		}
	}
}

func TestValidateTokenPair(t *testing.T) {
	if err := ValidateTokenPair(session.TokenPair{AccessToken: "a"}); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected partial pair to be malformed, got %v", err)
	}
	if err := ValidateTokenPair(session.TokenPair{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCredentials(t *testing.T) {
	creds, err := ValidateCredentials(Credentials{Email: "  ada@campus.edu ", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.Email != "ada@campus.edu" {
		t.Fatalf("expected trimmed email, got %q", creds.Email)
	}
	if _, err := ValidateCredentials(Credentials{Email: "ada@campus.edu"}); err == nil {
		t.Fatalf("expected missing password to fail")
	}
	if _, err := ValidateCredentials(Credentials{Password: "pw"}); err == nil {
		t.Fatalf("expected missing email to fail")
	}
}
