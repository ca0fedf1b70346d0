package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/sixth-rift-api/internal/config"
)

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	store, err := newStorage(ctx, config.Storage{Driver: "memory"})
	require.NoError(t, err)
	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())

	store, err = newStorage(ctx, config.Storage{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "data", "subscribers.db"),
	})
	require.NoError(t, err)
	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())

	_, err = newStorage(ctx, config.Storage{Driver: "cassandra"})
	assert.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer

	setupLogger("prod", &buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	setupLogger("dev", &buf).Debug("details")
	assert.Contains(t, buf.String(), "msg=details")

	buf.Reset()
	setupLogger("prod", &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestLogOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, logOutput(config.Log{}))
	assert.NotEqual(t, os.Stdout, logOutput(config.Log{File: filepath.Join(t.TempDir(), "api.log")}))
}
