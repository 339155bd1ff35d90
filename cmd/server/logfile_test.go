package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFile_TrimsToTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	lf, err := openLogFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { lf.Close() })
	lf.max, lf.keep = 100, 40

	_, err = lf.Write(bytes.Repeat([]byte("a"), 90))
	require.NoError(t, err)
	_, err = lf.Write(bytes.Repeat([]byte("b"), 20))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 40)
	require.Equal(t, string(bytes.Repeat([]byte("a"), 20))+string(bytes.Repeat([]byte("b"), 20)), string(data))

	_, err = lf.Write([]byte("c"))
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 41)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLogLevel("debug").String())
	require.Equal(t, "WARN", parseLogLevel("warn").String())
	require.Equal(t, "ERROR", parseLogLevel("error").String())
	require.Equal(t, "INFO", parseLogLevel("verbose").String())
}

func TestEnsureDBDir(t *testing.T) {
	require.NoError(t, ensureDBDir(":memory:"))
	require.NoError(t, ensureDBDir("civic.db"))

	path := filepath.Join(t.TempDir(), "nested", "dir", "civic.db")
	require.NoError(t, ensureDBDir(path))
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
