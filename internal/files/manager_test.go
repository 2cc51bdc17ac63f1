package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riepilogo/internal/shared/testutil"
)

func TestManager_WriteFile(t *testing.T) {
	base := t.TempDir()
	logger, logs := testutil.NewTestLogger(t)
	m := NewManagerWithLogger(base, logger)

	require.NoError(t, m.WriteFile("out/nested/riepilogo_2025.csv", []byte("first")))
	require.NoError(t, m.WriteFile("out/nested/riepilogo_2025.csv", []byte("second")))

	path := filepath.Join(base, "out", "nested", "riepilogo_2025.csv")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
	assert.True(t, m.FileExists("out/nested/riepilogo_2025.csv"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	assert.True(t, logs.ContainsMessage("Writing file"))
}

func TestManager_WriteFileAbsolutePath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "riepilogo_2024.xlsx")

	require.NoError(t, NewManager("/ignored").WriteFile(target, []byte{1, 2, 3}))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
}

func TestManager_FileExists(t *testing.T) {
	m := NewManager(t.TempDir())
	assert.False(t, m.FileExists("missing.csv"))
}
