package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Upload and input file errors
var (
	ErrNotCSV       = errors.New("not a CSV file")
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file exceeds the size limit")
	ErrTooManyFiles = errors.New("too many files")
)

// FileError ties a file validation failure to the file name.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	if e.File == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// UploadLimits bounds a single summary request.
type UploadLimits struct {
	MaxFiles     int
	MaxFileBytes int64
}

// FileValidator provides common file validation functions for the web
// server and the CLI
type FileValidator struct {
	logger *slog.Logger
	limits UploadLimits
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger, limits UploadLimits) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
		limits: limits,
	}
}

// ValidateCount checks the number of files in one request. Zero files is not
// an error here; callers decide how to present an empty selection.
func (v *FileValidator) ValidateCount(n int) error {
	if v.limits.MaxFiles > 0 && n > v.limits.MaxFiles {
		v.logger.Warn("Too many files in upload",
			slog.Int("count", n),
			slog.Int("max_files", v.limits.MaxFiles))
		return &FileError{Err: fmt.Errorf("%w: %d, at most %d", ErrTooManyFiles, n, v.limits.MaxFiles)}
	}
	return nil
}

// ValidateUpload checks one uploaded file by name and size.
func (v *FileValidator) ValidateUpload(name string, size int64) error {
	if ext := strings.ToLower(filepath.Ext(name)); ext != ".csv" {
		v.logger.Warn("Rejected upload with wrong extension",
			slog.String("file", name),
			slog.String("extension", ext))
		return &FileError{File: name, Err: ErrNotCSV}
	}
	if size == 0 {
		return &FileError{File: name, Err: ErrEmptyFile}
	}
	if v.limits.MaxFileBytes > 0 && size > v.limits.MaxFileBytes {
		v.logger.Warn("Rejected oversized upload",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("max_file_bytes", v.limits.MaxFileBytes))
		return &FileError{File: name, Err: fmt.Errorf("%w of %d bytes", ErrFileTooLarge, v.limits.MaxFileBytes)}
	}
	return nil
}

// ValidateInputDirectory validates that the input directory exists
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks that path is a readable, non-empty CSV file within
// the size limit.
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	return v.ValidateUpload(path, info.Size())
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	testFile.Close()
	os.Remove(testFile.Name())

	return nil
}
