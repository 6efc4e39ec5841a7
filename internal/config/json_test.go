package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"identity_provider":    "toolkit",
		"api_key":              "AIza-test",
		"google_callback_port": 8085,
		"role_store":           "s3",
		"s3": map[string]any{
			"bucket":   "roles",
			"endpoint": "http://127.0.0.1:9000",
		},
		"ready_timeout":     "15s",
		"reconcile_timeout": 2000000000,
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ProviderToolkit, cfg.IdentityProvider)
		assert.Equal(t, "AIza-test", cfg.APIKey)
		assert.Equal(t, 8085, cfg.GoogleCallbackPort)
		assert.Equal(t, "s3", cfg.RoleStore)
		assert.Equal(t, "roles", cfg.S3.Bucket)
		assert.Equal(t, "http://127.0.0.1:9000", cfg.S3.Endpoint)
		assert.Equal(t, "users/", cfg.S3.Prefix, "absent keys keep defaults")
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 15*time.Second, cfg.ReadyTimeout)
		assert.Equal(t, 2*time.Second, cfg.ReconcileTimeout)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{RoleStore: "defaults", ReadyTimeout: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "defaults", cfg.RoleStore)
		assert.Equal(t, 42*time.Second, cfg.ReadyTimeout)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(dir, "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`identity_provider: toolkit
role_store: firestore
firestore_project: demo-project
s3:
  region: eu-west-1
log_format: json
ready_timeout: 3s
`), 0o600))
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ProviderToolkit, cfg.IdentityProvider)
		assert.Equal(t, "firestore", cfg.RoleStore)
		assert.Equal(t, "demo-project", cfg.FirestoreProject)
		assert.Equal(t, "eu-west-1", cfg.S3.Region)
		assert.Equal(t, "users/", cfg.S3.Prefix)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, 3*time.Second, cfg.ReadyTimeout)
	})

	t.Run("invalid YAML panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yml")
		require.NoError(t, os.WriteFile(bad, []byte("role_store: [unterminated"), 0o600))
		os.Args = []string{"testbin", "-c", bad}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
