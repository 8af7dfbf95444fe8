package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gateconsole/internal/logger"
	"gateconsole/pkg/models"
)

// FileStore keeps the setting as a JSON document on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store, creating the parent directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("settings file path is empty")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	logger.Infof("Settings file store initialized: %s", path)
	return &FileStore{path: path}, nil
}

// Load reads the saved setting.
func (s *FileStore) Load(ctx context.Context) (*models.EngineConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	var doc map[string]models.EngineConfig
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}
	cfg, ok := doc[Key]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

// Save atomically replaces the saved setting.
func (s *FileStore) Save(ctx context.Context, cfg models.EngineConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(map[string]models.EngineConfig{Key: cfg}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
