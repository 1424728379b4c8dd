package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the session document in a JSON file as
// {"userInfo": {"token": "..."}}.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Token implements Provider.
func (f *FileStore) Token(context.Context) (string, error) {
	info, err := f.Load()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(info.Token) == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(info.Token), nil
}

// Load reads the stored document.
func (f *FileStore) Load() (UserInfo, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return UserInfo{}, ErrNoToken
		}
		return UserInfo{}, fmt.Errorf("reading session file: %w", err)
	}

	var doc map[string]UserInfo
	if err := json.Unmarshal(data, &doc); err != nil {
		return UserInfo{}, fmt.Errorf("parsing session file: %w", err)
	}
	info, ok := doc[Key]
	if !ok {
		return UserInfo{}, ErrNoToken
	}
	return info, nil
}

// Save writes info, replacing any existing document.
func (f *FileStore) Save(info UserInfo) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	data, err := json.MarshalIndent(map[string]UserInfo{Key: info}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
