package credstore

import (
	"context"
	"sync"

	"github.com/MrEthical07/goAuthClient/session"
)

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	record Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := Record{Tokens: m.record.Tokens}
	if m.record.User != nil {
		u := *m.record.User
		out.User = &u
	}
	return out, nil
}

func (m *MemoryStore) SaveTokens(_ context.Context, tokens session.TokenPair) error {
	if err := checkTokens(tokens); err != nil {
		return err
	}
	m.mu.Lock()
	m.record.Tokens = tokens
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SaveUser(_ context.Context, user session.User) error {
	if err := checkUser(user); err != nil {
		return err
	}
	m.mu.Lock()
	m.record.User = &user
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.record = Record{}
	m.mu.Unlock()
	return nil
}

// Backend returns "memory".
func (*MemoryStore) Backend() string { return "memory" }
