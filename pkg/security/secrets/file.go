package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider loads secrets from individual files in a directory.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a provider reading from dir, which must exist.
func NewFileProvider(dir string) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets directory %s is not a directory", dir)
	}
	return &FileProvider{dir: dir}, nil
}

// GetSecret reads <dir>/<name>. Surrounding whitespace is trimmed. Files
// with group or other permissions are rejected.
func (p *FileProvider) GetSecret(_ context.Context, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid secret name %q", name)
	}
	path := filepath.Join(p.dir, name)

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s (file %s)", ErrNotFound, name, path)
	}
	if err != nil {
		return "", fmt.Errorf("stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret %s is not a regular file", path)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", path, perm)
	}

	// #nosec G304 - name is a single path element inside dir
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Name returns "file".
func (p *FileProvider) Name() string {
	return "file"
}
