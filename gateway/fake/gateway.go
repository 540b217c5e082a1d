package fake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goAuthClient/gateway"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/password"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/google/uuid"
)

// ErrInjected is a ready-made error for [Gateway.Fail].
var ErrInjected = errors.New("fake gateway: injected failure")

// Op names a gateway operation for hooks and counters.
type Op uint8

const (
	OpLogin Op = iota
	OpLogout
	OpGetCurrentUser
	OpRefresh
	opCount
)

// String returns the lowercase operation name.
func (o Op) String() string {
	switch o {
	case OpLogin:
		return "login"
	case OpLogout:
		return "logout"
	case OpGetCurrentUser:
		return "get_current_user"
	case OpRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Hook runs before an operation is processed. A non-nil error is returned to the caller as is.
type Hook func(ctx context.Context) error

// Config configures a [Gateway].
type Config struct {
	AccessTTL time.Duration
	Secret    []byte
	Issuer    string
	Password  password.Config
}

// DefaultConfig returns a development configuration with a fixed secret.
func DefaultConfig() Config {
	return Config{
		AccessTTL: 15 * time.Minute,
		Secret:    []byte("dashauth-development-secret-0001"),
		Issuer:    "dashauth-fake",
		Password:  password.DefaultConfig(),
	}
}

// SeedUser is a user created at startup.
type SeedUser struct {
	Email    string
	Password string
	Role     session.Role
	Name     string
}

// DevUsers are the accounts offered by the development mock login.
func DevUsers() []SeedUser {
	return []SeedUser{
		{Email: "student@campus.test", Password: "student-pass", Role: session.RoleStudent, Name: "Sam Student"},
		{Email: "advisor@campus.test", Password: "advisor-pass", Role: session.RoleAdvisor, Name: "Avery Advisor"},
		{Email: "admin@campus.test", Password: "admin-pass", Role: session.RoleAdmin, Name: "Alex Admin"},
	}
}

type account struct {
	user session.User
	hash string
}

type grant struct {
	userID  string
	refresh string
	revoked bool
}

// Gateway is an in-memory gateway.Gateway. It is safe for concurrent use.
type Gateway struct {
	hasher *password.Argon2
	tokens *jwt.Manager

	mu        sync.Mutex
	byEmail   map[string]*account
	byID      map[string]*account
	grants    map[string]*grant
	byRefresh map[string]string
	hooks     [opCount]Hook

	calls [opCount]atomic.Int64
}

var _ gateway.Gateway = (*Gateway)(nil)

// New returns an empty Gateway.
func New(cfg Config) (*Gateway, error) {
	hasher, err := password.NewArgon2(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("fake gateway: %w", err)
	}
	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.AccessTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    cfg.Secret,
		Issuer:        cfg.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("fake gateway: %w", err)
	}
	return &Gateway{
		hasher:    hasher,
		tokens:    tokens,
		byEmail:   make(map[string]*account),
		byID:      make(map[string]*account),
		grants:    make(map[string]*grant),
		byRefresh: make(map[string]string),
	}, nil
}

// NewDev returns a Gateway seeded with [DevUsers].
func NewDev() (*Gateway, error) {
	g, err := New(DefaultConfig())
	if err != nil {
		return nil, err
	}
	for _, u := range DevUsers() {
		if _, err := g.AddUser(u); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddUser registers a user and returns it with its generated ID.
func (g *Gateway) AddUser(seed SeedUser) (session.User, error) {
	if !seed.Role.Valid() {
		return session.User{}, fmt.Errorf("fake gateway: invalid role %q", seed.Role)
	}
	email := normalizeEmail(seed.Email)
	hash, err := g.hasher.Hash(seed.Password)
	if err != nil {
		return session.User{}, fmt.Errorf("fake gateway: hash password for %s: %w", email, err)
	}
	acc := &account{
		user: session.User{
			ID:          uuid.NewString(),
			Email:       email,
			Role:        seed.Role,
			DisplayName: seed.Name,
		},
		hash: hash,
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.byEmail[email]; exists {
		return session.User{}, fmt.Errorf("fake gateway: duplicate user %s", email)
	}
	g.byEmail[email] = acc
	g.byID[acc.user.ID] = acc
	return acc.user, nil
}

// SetHook installs h for op; nil removes it.
func (g *Gateway) SetHook(op Op, h Hook) {
	g.mu.Lock()
	g.hooks[op] = h
	g.mu.Unlock()
}

// Fail makes every subsequent call to op return err until Fail(op, nil) is called.
func (g *Gateway) Fail(op Op, err error) {
	if err == nil {
		g.SetHook(op, nil)
		return
	}
	g.SetHook(op, func(context.Context) error { return err })
}

// Calls returns how many times op has been invoked.
func (g *Gateway) Calls(op Op) int64 {
	return g.calls[op].Load()
}

// RevokeUser invalidates every session of userID.
func (g *Gateway) RevokeUser(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, gr := range g.grants {
		if gr.userID == userID {
			gr.revoked = true
		}
	}
}

// ActiveSessions returns the number of sessions that are not revoked.
func (g *Gateway) ActiveSessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, gr := range g.grants {
		if !gr.revoked {
			n++
		}
	}
	return n
}

// Login implements gateway.Gateway.
func (g *Gateway) Login(ctx context.Context, creds gateway.Credentials) (gateway.LoginResponse, error) {
	if err := g.enter(ctx, OpLogin); err != nil {
		return gateway.LoginResponse{}, err
	}

	g.mu.Lock()
	acc := g.byEmail[normalizeEmail(creds.Email)]
	g.mu.Unlock()
	if acc == nil {
		return gateway.LoginResponse{}, gateway.ErrInvalidCredentials
	}
	ok, err := g.hasher.Verify(creds.Password, acc.hash)
	if err != nil || !ok {
		return gateway.LoginResponse{}, gateway.ErrInvalidCredentials
	}

	sid := uuid.NewString()
	access, err := g.issueAccess(acc.user, sid)
	if err != nil {
		return gateway.LoginResponse{}, fmt.Errorf("%w: %v", gateway.ErrNetworkFailure, err)
	}
	refresh := uuid.NewString()

	g.mu.Lock()
	g.grants[sid] = &grant{userID: acc.user.ID, refresh: refresh}
	g.byRefresh[refresh] = sid
	g.mu.Unlock()

	return gateway.LoginResponse{User: acc.user, AccessToken: access, RefreshToken: refresh}, nil
}

// Logout implements gateway.Gateway.
func (g *Gateway) Logout(ctx context.Context, accessToken string) error {
	if err := g.enter(ctx, OpLogout); err != nil {
		return err
	}
	sid, _, err := g.authenticate(accessToken)
	if err != nil {
		return err
	}
	g.mu.Lock()
	if gr := g.grants[sid]; gr != nil {
		gr.revoked = true
		delete(g.byRefresh, gr.refresh)
	}
	g.mu.Unlock()
	return nil
}

// GetCurrentUser implements gateway.Gateway.
func (g *Gateway) GetCurrentUser(ctx context.Context, accessToken string) (session.User, error) {
	if err := g.enter(ctx, OpGetCurrentUser); err != nil {
		return session.User{}, err
	}
	_, user, err := g.authenticate(accessToken)
	return user, err
}

// RefreshToken implements gateway.Gateway. The presented refresh token is consumed.
func (g *Gateway) RefreshToken(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	if err := g.enter(ctx, OpRefresh); err != nil {
		return session.TokenPair{}, err
	}

	g.mu.Lock()
	sid, ok := g.byRefresh[refreshToken]
	var gr *grant
	if ok {
		gr = g.grants[sid]
	}
	if gr == nil || gr.revoked {
		g.mu.Unlock()
		return session.TokenPair{}, gateway.ErrUnauthorized
	}
	acc := g.byID[gr.userID]
	next := uuid.NewString()
	delete(g.byRefresh, refreshToken)
	g.byRefresh[next] = sid
	gr.refresh = next
	g.mu.Unlock()

	access, err := g.issueAccess(acc.user, sid)
	if err != nil {
		return session.TokenPair{}, fmt.Errorf("%w: %v", gateway.ErrNetworkFailure, err)
	}
	return session.TokenPair{AccessToken: access, RefreshToken: next}, nil
}

func (g *Gateway) issueAccess(user session.User, sid string) (string, error) {
	return g.tokens.CreateAccess(user.ID, user.Email, string(user.Role), sid+"."+uuid.NewString())
}

func (g *Gateway) authenticate(accessToken string) (string, session.User, error) {
	claims, err := g.tokens.ParseAccess(accessToken)
	if err != nil {
		return "", session.User{}, gateway.ErrUnauthorized
	}
	sid, _, found := strings.Cut(claims.ID, ".")
	if !found {
		return "", session.User{}, gateway.ErrUnauthorized
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	gr := g.grants[sid]
	if gr == nil || gr.revoked || gr.userID != claims.UID {
		return "", session.User{}, gateway.ErrUnauthorized
	}
	acc := g.byID[claims.UID]
	if acc == nil {
		return "", session.User{}, gateway.ErrUnauthorized
	}
	return sid, acc.user, nil
}

func (g *Gateway) enter(ctx context.Context, op Op) error {
	g.calls[op].Add(1)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", gateway.ErrNetworkFailure, err)
	}
	g.mu.Lock()
	hook := g.hooks[op]
	g.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
