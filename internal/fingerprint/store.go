// Copyright 2026 The SeatGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists the fingerprint between sessions. Load returns "" with a
// nil error when nothing is stored yet.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, fp string) error
}

// ClearableStore is a Store whose value can be discarded.
type ClearableStore interface {
	Store
	Clear() error
}

// OpenStore returns the FileStore at path, or at DefaultPath when path is
// empty. When no per-user location exists it returns a session-only
// MemoryStore together with ErrStorageUnavailable.
func OpenStore(path string) (ClearableStore, error) {
	if path != "" {
		return NewFileStore(path), nil
	}
	path, err := DefaultPath()
	if err != nil {
		return &MemoryStore{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return NewFileStore(path), nil
}

// FileStore keeps the fingerprint in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is the per-user location of the fingerprint file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "seatgate", "device_id"), nil
}

// Path returns the file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(context.Context) (string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Save writes through a temp file and rename so a crash never leaves a
// truncated value.
func (s *FileStore) Save(_ context.Context, fp string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".device_id-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(fp + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Clear removes the stored fingerprint.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu sync.Mutex
	fp string
}

func (m *MemoryStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fp, nil
}

func (m *MemoryStore) Save(_ context.Context, fp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fp = fp
	return nil
}

// Clear forgets the stored value.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fp = ""
	return nil
}
