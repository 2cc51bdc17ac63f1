package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager provides file management operations relative to a base path
type Manager struct {
	basePath string
	logger   *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(basePath string) *Manager {
	return NewManagerWithLogger(basePath, slog.Default())
}

// NewManagerWithLogger creates a file manager with a specific logger
func NewManagerWithLogger(basePath string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{basePath: basePath, logger: logger}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// WriteFile writes data next to path in a temporary file and renames it into
// place, creating parent directories as needed.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)

	m.logger.Info("Writing file",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Int("size_bytes", len(data)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file content: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, fullPath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// resolvePath resolves a relative path against the base path
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.basePath == "" {
		return path
	}
	return filepath.Join(m.basePath, path)
}
