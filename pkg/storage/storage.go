// Package storage puts uploaded files into object storage and hands back
// their public URL.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage writes an object under key and returns its public URL
type Storage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Backend() string
}

// LocalStorage writes files below a directory served by the API under /uploads
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates the directory if needed. baseURL prefixes returned
// URLs and may be empty for same-origin links.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the root directory
func (l *LocalStorage) Dir() string { return l.dir }

// Backend implements Storage
func (l *LocalStorage) Backend() string { return "local" }

// Put implements Storage
func (l *LocalStorage) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(l.dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return l.baseURL + "/uploads/" + key, nil
}
