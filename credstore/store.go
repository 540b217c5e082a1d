package credstore

import (
	"context"
	"errors"

	"github.com/MrEthical07/goAuthClient/session"
)

// ErrPartialTokenPair is returned when a token pair with an empty half is saved.
var ErrPartialTokenPair = errors.New("partial token pair")

// ErrInvalidUser is returned when a user without an ID or valid role is saved.
var ErrInvalidUser = errors.New("invalid cached user")

const (
	KeyAccessToken  = "access-token"
	KeyRefreshToken = "refresh-token"
	KeyCachedUser   = "cached-user"
)

// Record is everything the store holds. A zero Record means nothing is persisted.
type Record struct {
	Tokens session.TokenPair
	User   *session.User
}

// HasAccessToken reports whether an access token is persisted.
func (r Record) HasAccessToken() bool {
	return r.Tokens.AccessToken != ""
}

// Store is the persisted credential store.
type Store interface {
	Load(ctx context.Context) (Record, error)
	SaveTokens(ctx context.Context, tokens session.TokenPair) error
	SaveUser(ctx context.Context, user session.User) error
	Clear(ctx context.Context) error
}

// Named is implemented by stores that report their backend name.
type Named interface {
	Backend() string
}

// BackendOf returns the backend name of s, or "custom" when s does not report one.
func BackendOf(s Store) string {
	if n, ok := s.(Named); ok {
		return n.Backend()
	}
	return "custom"
}

// KeyBuilder maps logical keys to backend keys.
type KeyBuilder interface {
	Key(logical string) string
}

// PrefixKeys joins a prefix and the logical key with ':'.
type PrefixKeys struct {
	Prefix string
}

func (p PrefixKeys) Key(logical string) string {
	if p.Prefix == "" {
		return logical
	}
	return p.Prefix + ":" + logical
}

func checkTokens(tokens session.TokenPair) error {
	if !tokens.Complete() {
		return ErrPartialTokenPair
	}
	return nil
}

func checkUser(user session.User) error {
	if user.ID == "" || !user.Role.Valid() {
		return ErrInvalidUser
	}
	return nil
}
