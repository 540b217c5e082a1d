package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the token signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 signs with an Ed25519 key pair.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with a shared secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config configures a [Manager].
type Config struct {
	AccessTTL     time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Manager issues and verifies access tokens.
type Manager struct {
	ttl      time.Duration
	method   jwt.SigningMethod
	signKey  any
	checkKey any
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// NewManager validates cfg, resolves its keys and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("access TTL must be positive")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("leeway must be within [0, 2m]")
	}

	m := &Manager{
		ttl:      cfg.AccessTTL,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		now:      time.Now,
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires a shared secret")
		}
		m.method = jwt.SigningMethodHS256
		m.signKey, m.checkKey = cfg.PrivateKey, cfg.PrivateKey
	case MethodEd25519:
		priv, err := parseEdPrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		pub, err := parseEdPublicKey(cfg.PublicKey)
		if err != nil {
			return nil, err
		}
		m.method = jwt.SigningMethodEdDSA
		m.signKey, m.checkKey = priv, pub
	default:
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}
	return m, nil
}

// WithClock replaces the time source; used by tests to mint already-expired tokens.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// CreateAccess signs an access token for the given user.
func (m *Manager) CreateAccess(uid, email, role, tokenID string) (string, error) {
	if strings.TrimSpace(uid) == "" {
		return "", errors.New("empty uid")
	}

	issued := m.now()
	claims := AccessClaims{UID: uid, Email: email, Role: role}
	claims.ID = tokenID
	claims.Subject = uid
	claims.Issuer = m.issuer
	claims.IssuedAt = jwt.NewNumericDate(issued)
	claims.ExpiresAt = jwt.NewNumericDate(issued.Add(m.ttl))
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.signKey)
}

// ParseAccess verifies tokenStr and returns its claims.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithLeeway(m.leeway),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	var claims AccessClaims
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return m.checkKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}

// PeekExpiry reads the exp claim of tokenStr without verifying the signature. ok is false
// when the token is not a JWT or carries no exp; opaque tokens are legal.
func PeekExpiry(tokenStr string) (exp time.Time, ok bool) {
	if strings.Count(tokenStr, ".") != 2 {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
