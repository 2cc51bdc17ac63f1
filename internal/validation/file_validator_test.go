package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riepilogo/internal/shared/testutil"
)

func newValidator(t *testing.T) *FileValidator {
	logger, _ := testutil.NewTestLogger(t)
	return NewFileValidator(logger, UploadLimits{MaxFiles: 2, MaxFileBytes: 10})
}

func TestFileValidator_ValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		size    int64
		wantErr error
	}{
		{name: "valid csv", file: "gennaio.csv", size: 5},
		{name: "upper case extension", file: "GENNAIO.CSV", size: 5},
		{name: "exactly at limit", file: "a.csv", size: 10},
		{name: "wrong extension", file: "gennaio.xlsx", size: 5, wantErr: ErrNotCSV},
		{name: "no extension", file: "gennaio", size: 5, wantErr: ErrNotCSV},
		{name: "empty file", file: "a.csv", size: 0, wantErr: ErrEmptyFile},
		{name: "too large", file: "a.csv", size: 11, wantErr: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator(t).ValidateUpload(tt.file, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
			var ferr *FileError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.file, ferr.File)
			assert.True(t, strings.HasPrefix(err.Error(), tt.file+": "))
		})
	}
}

func TestFileValidator_ValidateCount(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidateCount(0))
	assert.NoError(t, v.ValidateCount(2))

	err := v.ValidateCount(3)
	assert.ErrorIs(t, err, ErrTooManyFiles)
	assert.Equal(t, "too many files: 3, at most 2", err.Error())

	unlimited := NewFileValidator(nil, UploadLimits{})
	assert.NoError(t, unlimited.ValidateCount(1000))
	assert.NoError(t, unlimited.ValidateUpload("big.csv", 1<<30))
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{name: "valid directory", path: dir},
		{name: "non-existent directory", path: filepath.Join(dir, "missing"), errorContains: "does not exist"},
		{name: "path is file not directory", path: file, errorContains: "not a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator(t).ValidateInputDirectory(tt.path)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	v := newValidator(t)

	assert.NoError(t, v.ValidateCSVFile(write("ok.csv", "Giorno;A")))
	assert.ErrorIs(t, v.ValidateCSVFile(write("empty.csv", "")), ErrEmptyFile)
	assert.ErrorIs(t, v.ValidateCSVFile(write("big.csv", "Giorno;A;B;C")), ErrFileTooLarge)
	assert.ErrorIs(t, v.ValidateCSVFile(write("data.txt", "Giorno")), ErrNotCSV)
	assert.ErrorContains(t, v.ValidateCSVFile(filepath.Join(dir, "missing.csv")), "does not exist")
	assert.ErrorContains(t, v.ValidateCSVFile(dir), "is a directory")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "2025")

	require.NoError(t, newValidator(t).ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
