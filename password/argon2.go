package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	phcPrefix   = "$argon2id$"
	minMemoryKB = 8 * 1024
	minSaltLen  = 16
	minKeyLen   = 16
	minPassLen  = 8
	maxPassLen  = 1024
)

var (
	// ErrPasswordTooShort is returned by Hash for passwords under 8 bytes.
	ErrPasswordTooShort = errors.New("password must be at least 8 bytes")
	// ErrPasswordTooLong is returned by Hash for passwords over 1024 bytes.
	ErrPasswordTooLong = errors.New("password must be at most 1024 bytes")

	errMalformedHash = errors.New("malformed argon2id hash")
)

// Config holds Argon2id cost parameters.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig returns parameters cheap enough for a development gateway.
func DefaultConfig() Config {
	return Config{Memory: minMemoryKB, Time: 1, Parallelism: 1, SaltLength: minSaltLen, KeyLength: 32}
}

func (c Config) validate() error {
	switch {
	case c.Memory < minMemoryKB:
		return fmt.Errorf("password memory must be >= %d KB", minMemoryKB)
	case c.Time < 1:
		return errors.New("password time must be >= 1")
	case c.Parallelism < 1:
		return errors.New("password parallelism must be >= 1")
	case c.SaltLength < minSaltLen:
		return fmt.Errorf("password salt length must be >= %d", minSaltLen)
	case c.KeyLength < minKeyLen:
		return fmt.Errorf("password key length must be >= %d", minKeyLen)
	}
	return nil
}

// Argon2 hashes and verifies passwords. It is safe for concurrent use.
type Argon2 struct {
	cfg Config
}

// NewArgon2 validates cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Argon2{cfg: cfg}, nil
}

// Hash returns the PHC encoding of password under a fresh random salt.
func (a *Argon2) Hash(password string) (string, error) {
	switch {
	case len(password) < minPassLen:
		return "", ErrPasswordTooShort
	case len(password) > maxPassLen:
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, a.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, a.cfg.Time, a.cfg.Memory, a.cfg.Parallelism, a.cfg.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		phcPrefix, argon2.Version, a.cfg.Memory, a.cfg.Time, a.cfg.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether password matches encoded. A mismatch is (false, nil); an error
// means encoded itself is unusable.
func (a *Argon2) Verify(password, encoded string) (bool, error) {
	if len(password) > maxPassLen {
		return false, nil
	}
	p, err := decode(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(got, p.key) == 1, nil
}

type phc struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decode(encoded string) (phc, error) {
	var p phc
	rest, ok := strings.CutPrefix(encoded, phcPrefix)
	if !ok {
		return p, errMalformedHash
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return p, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil {
		return p, errMalformedHash
	}
	if version != argon2.Version {
		return p, fmt.Errorf("unsupported argon2 version %d", version)
	}
	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, errMalformedHash
	}
	if p.memory < minMemoryKB || p.time < 1 || p.threads < 1 {
		return p, errors.New("argon2 parameters below minimum")
	}

	// Accept both padded and unpadded base64.
	b64 := base64.RawStdEncoding
	var err error
	if p.salt, err = b64.DecodeString(strings.TrimRight(fields[2], "=")); err != nil || len(p.salt) < minSaltLen {
		return p, errMalformedHash
	}
	if p.key, err = b64.DecodeString(strings.TrimRight(fields[3], "=")); err != nil || len(p.key) == 0 {
		return p, errMalformedHash
	}
	return p, nil
}
