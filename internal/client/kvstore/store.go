package kvstore

//go:generate $MOCKGEN -source=store.go -destination=mocks/store_mock.go

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/progress-sync/internal/constants"
	"github.com/oshokin/progress-sync/internal/utils"
)

var (
	// ErrEmptyPath is returned when the storage file path is empty.
	ErrEmptyPath = errors.New("storage path cannot be empty")
	// ErrEmptyKey is returned when a key is empty.
	ErrEmptyKey = errors.New("storage key cannot be empty")
	// ErrCorruptedStorage is returned when the storage file is not a JSON object of strings.
	ErrCorruptedStorage = errors.New("storage file is corrupted")
)

// Store defines the key-value storage operations.
type Store interface {
	// Get returns the value stored under key. The second result is false when the key is absent.
	Get(key string) (string, bool, error)
	// Set stores value under key.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// FileStore is a Store persisted to a JSON file.
// Every write rewrites the whole file through a temporary file and a rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	return &FileStore{path: path}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", false, err
	}

	value, ok := entries[key]

	return value, ok, nil
}

// Set stores value under key.
func (s *FileStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	entries[key] = value

	return s.write(entries)
}

// Remove deletes key.
func (s *FileStore) Remove(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	if _, ok := entries[key]; !ok {
		return nil
	}

	delete(entries, key)

	return s.write(entries)
}

func (s *FileStore) read() (map[string]string, error) {
	exists, err := utils.IsFileExist(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage file: %w", err)
	}

	entries := make(map[string]string)
	if !exists {
		return entries, nil
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	if len(content) == 0 {
		return entries, nil
	}

	if err = json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptedStorage, s.path, err)
	}

	if entries == nil {
		entries = make(map[string]string)
	}

	return entries, nil
}

func (s *FileStore) write(entries map[string]string) error {
	content, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create storage folder: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(s.path)+constants.TempFilePattern)
	if err != nil {
		return fmt.Errorf("failed to create temporary storage file: %w", err)
	}

	tempPath := tempFile.Name()

	_, err = tempFile.Write(content)
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Chmod(tempPath, constants.PrivateFilePermissions)
	}

	if err != nil {
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to write temporary storage file: %w", err)
	}

	// Atomically replace the previous file.
	if err = os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to replace storage file: %w", err)
	}

	return nil
}
