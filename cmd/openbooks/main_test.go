package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"openbooks.com/pkg/logger"
)

func TestOpenInputOutput(t *testing.T) {
	in, closeIn, err := openInput("-")
	require.NoError(t, err)
	assert.Equal(t, os.Stdin, in)
	closeIn()

	_, _, err = openInput(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	p := filepath.Join(t.TempDir(), "out.txt")
	out, closeOut, err := openOutput(p)
	require.NoError(t, err)
	_, err = out.Write([]byte("match 2 1 4 99.50\n"))
	require.NoError(t, err)
	closeOut()

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "match 2 1 4 99.50\n", string(b))
}

func TestLoadConfig_LogsBeforeConfigApplied(t *testing.T) {
	// 日志写 stderr，换成管道抓下来
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := os.Stderr
	os.Stderr = w
	t.Cleanup(func() {
		os.Stderr = old
		logger.Log = zap.NewNop()
	})
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	logger.Sync()
	require.NoError(t, w.Close())
	require.NoError(t, err)
	assert.Equal(t, "openbooks", cfg.Name)

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), "config file not found, using defaults")

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
