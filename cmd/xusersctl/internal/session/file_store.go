package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
)

const (
	// DirName is the per-user directory holding console state.
	DirName = ".xusers"
	// FileName is the session file inside DirName.
	FileName = "session.json"
)

// FileStore implements sdk.SessionStore using a JSON file.
type FileStore struct {
	path string
}

var _ sdk.SessionStore = (*FileStore)(nil)

// DefaultDir returns ~/.xusers.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// NewFileStore creates a FileStore rooted at dir, creating dir if needed.
// An empty dir means DefaultDir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return &FileStore{path: filepath.Join(dir, FileName)}, nil
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the session atomically (temp file + rename).
func (s *FileStore) Save(session *sdk.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	data = append(data, '\n')

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Load reads the session. A missing file is sdk.ErrNotLoggedIn. A session
// without a token still loads so a cached role survives token overrides.
func (s *FileStore) Load() (*sdk.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, sdk.ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var session sdk.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("corrupted session file (invalid JSON): %w", err)
	}
	return &session, nil
}

// Clear deletes the session file.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
