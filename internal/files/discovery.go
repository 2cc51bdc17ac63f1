package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCSVFiles finds all CSV files in dir, sorted by name.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsCSV(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// CollectInputs returns the explicitly named paths in the given order, followed
// by the CSV files of dir sorted by name. A path named twice is kept once, at
// its first position. dir may be empty.
func (d *Discovery) CollectInputs(dir string, paths []string) ([]FileInfo, error) {
	var inputs []FileInfo
	seen := make(map[string]bool)

	add := func(fi FileInfo) {
		key := filepath.Clean(fi.Path)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		inputs = append(inputs, fi)
	}

	for _, p := range paths {
		fullPath := d.resolve(p)
		info, err := os.Stat(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", fullPath, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory, not a file", fullPath)
		}
		add(FileInfo{
			Path:    fullPath,
			Name:    filepath.Base(fullPath),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	if dir != "" {
		found, err := d.FindCSVFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, fi := range found {
			add(fi)
		}
	}

	return inputs, nil
}

// IsCSV reports whether name has a .csv extension, in any case.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}
