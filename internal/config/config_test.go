package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
http_server:
  address: "0.0.0.0:8080"
  read_timeout: 3s
storage:
  driver: "memory"
admin:
  username: "band"
  password: "s3cret"
cors:
  allowed_origins: ["https://sixthrift.example"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPServer.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.WriteTimeout)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "band", cfg.Admin.Username)
	assert.Equal(t, "s3cret", cfg.Admin.Password)
	assert.False(t, cfg.Admin.UsesDefaults())
	assert.Equal(t, []string{"https://sixthrift.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
http_server:
  address: "localhost:5000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, DefaultAdminUsername, cfg.Admin.Username)
	assert.Equal(t, DefaultAdminPassword, cfg.Admin.Password)
	assert.True(t, cfg.Admin.UsesDefaults())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
http_server:
  address: "localhost:5000"
admin:
  username: "from-file"
  password: "from-file"
`)
	t.Setenv("ADMIN_USERNAME", "from-env")
	t.Setenv("ADMIN_PASSWORD", "env-pass")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Admin.Username)
	assert.Equal(t, "env-pass", cfg.Admin.Password)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			name: "unknown driver",
			body: `
env: "dev"
http_server:
  address: "localhost:5000"
storage:
  driver: "mongo"
`,
		},
		{
			name: "postgres without dsn",
			body: `
env: "dev"
http_server:
  address: "localhost:5000"
storage:
  driver: "postgres"
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	t.Run("empty path", func(t *testing.T) {
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
