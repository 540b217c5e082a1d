package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrEthical07/goAuthClient/session"
)

// FileStore keeps credentials in a single JSON document on disk. Every write replaces the
// whole document via a temp file and rename, so readers never see half a token pair.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileDocument struct {
	AccessToken  string        `json:"access-token,omitempty"`
	RefreshToken string        `json:"refresh-token,omitempty"`
	CachedUser   *session.User `json:"cached-user,omitempty"`
}

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(context.Context) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Tokens: session.TokenPair{AccessToken: doc.AccessToken, RefreshToken: doc.RefreshToken},
		User:   doc.CachedUser,
	}
	if !rec.Tokens.Complete() {
		rec.Tokens = session.TokenPair{}
	}
	if rec.User != nil && checkUser(*rec.User) != nil {
		rec.User = nil
	}
	return rec, nil
}

func (f *FileStore) SaveTokens(_ context.Context, tokens session.TokenPair) error {
	if err := checkTokens(tokens); err != nil {
		return err
	}
	return f.update(func(doc *fileDocument) {
		doc.AccessToken = tokens.AccessToken
		doc.RefreshToken = tokens.RefreshToken
	})
}

func (f *FileStore) SaveUser(_ context.Context, user session.User) error {
	if err := checkUser(user); err != nil {
		return err
	}
	return f.update(func(doc *fileDocument) {
		doc.CachedUser = &user
	})
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

func (f *FileStore) update(mutate func(*fileDocument)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	mutate(&doc)
	return f.write(doc)
}

func (f *FileStore) read() (fileDocument, error) {
	var doc fileDocument
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read credential file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("decode credential file: %w", err)
	}
	return doc, nil
}

func (f *FileStore) write(doc fileDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

// Backend returns "file".
func (*FileStore) Backend() string { return "file" }
