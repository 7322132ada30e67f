package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellignore/internal/logging"
)

func fileLogger(t *testing.T) (*logging.Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cellignored.log")
	cfg := logging.DefaultConfig()
	cfg.Output = "file"
	cfg.FilePath = path
	logger, err := logging.New(cfg)
	require.NoError(t, err)
	return logger, path
}

func TestShutdownWithError(t *testing.T) {
	logger, path := fileLogger(t)

	code := shutdown(logger, errors.New("open store: disk gone"))
	assert.Equal(t, 1, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "daemon failed")
	assert.Contains(t, string(data), "disk gone")
}

func TestShutdownClean(t *testing.T) {
	logger, path := fileLogger(t)
	logger.Info("shutting down")

	assert.Equal(t, 0, shutdown(logger, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shutting down")
}
