package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the session's bearer token between runs. Token
// returns the empty string when no token is held.
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear() error
}

const tokenFileName = "token"

// FileTokenStore keeps one bearer token string in a file. The in-memory
// copy is authoritative after construction; the file exists so the next
// process start can bootstrap the session.
type FileTokenStore struct {
	mu    sync.Mutex
	path  string
	token string
}

// NewFileTokenStore loads any previously saved token from dir. An empty
// dir falls back to a "storefront" directory under the user config dir.
func NewFileTokenStore(dir string) (*FileTokenStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "storefront")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create token dir: %w", err)
	}

	s := &FileTokenStore{path: filepath.Join(dir, tokenFileName)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read token file: %w", err)
		}
		return s, nil
	}
	s.token = strings.TrimSpace(string(data))

	return s, nil
}

func (s *FileTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	s.token = token
	return nil
}

func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	s.token = ""
	return nil
}

// MemoryTokenStore holds the token in process memory only. Used by tests
// and callers that never want a token written to disk.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
