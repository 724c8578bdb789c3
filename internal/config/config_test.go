package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewDefaultConfig_IsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultWebPort, cfg.Web.ListenPort)
	assert.Equal(t, DefaultPageSize, cfg.Web.PageSize)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultSessionTTL, cfg.Session.TTL.Std())
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "console.yaml", `
web:
  listen_port: 12000
  dashboard_reload: 30s
api:
  base_url: https://mod.example.org/api
  timeout: 5s
session:
  db_path: /tmp/s.db
  secret: hunter2
log:
  level: debug
  format: json
`)
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, 12000, cfg.Web.ListenPort)
	assert.Equal(t, 30*time.Second, cfg.Web.DashboardReload.Std())
	assert.Equal(t, "https://mod.example.org/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout.Std())
	assert.Equal(t, "hunter2", cfg.Session.Secret)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultPageSize, cfg.Web.PageSize)
	assert.Equal(t, DefaultCleanupInterval, cfg.Session.CleanupInterval.Std())
	require.NoError(t, cfg.Validate())
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "console.json", `{
		"web":{"listen_port":12001,"page_size":25,"dashboard_reload":"90s"},
		"api":{"base_url":"http://10.0.0.2:4567/api","timeout":"5s"},
		"session":{"ttl":"24h","cleanup_interval":60000000000}
	}`)
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, 12001, cfg.Web.ListenPort)
	assert.Equal(t, 25, cfg.Web.PageSize)
	assert.Equal(t, "http://10.0.0.2:4567/api", cfg.API.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Web.DashboardReload.Std())
	assert.Equal(t, 5*time.Second, cfg.API.Timeout.Std())
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL.Std())
	assert.Equal(t, time.Minute, cfg.Session.CleanupInterval.Std())
	require.NoError(t, cfg.Validate())
}

func TestDuration_Invalid(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Error(t, cfg.LoadFile(writeFile(t, "bad.json", `{"api":{"timeout":"soon"}}`)))
	assert.Error(t, cfg.LoadFile(writeFile(t, "bad.yaml", "api:\n  timeout: soon\n")))
	assert.Error(t, cfg.LoadFile(writeFile(t, "bool.json", `{"api":{"timeout":true}}`)))
}

func TestDuration_Marshal(t *testing.T) {
	out, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(out))

	var d Duration
	require.NoError(t, yaml.Unmarshal([]byte("2m"), &d))
	assert.Equal(t, 2*time.Minute, d.Std())
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, cfg.LoadFile(writeFile(t, "console.toml", "x = 1")))
	assert.Error(t, cfg.LoadFile(writeFile(t, "broken.json", "{")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MainConfig)
	}{
		{"low port", func(c *MainConfig) { c.Web.ListenPort = 80 }},
		{"high port", func(c *MainConfig) { c.Web.ListenPort = 70000 }},
		{"ssl without cert", func(c *MainConfig) { c.Web.SSL = true }},
		{"zero page size", func(c *MainConfig) { c.Web.PageSize = 0 }},
		{"relative base url", func(c *MainConfig) { c.API.BaseURL = "/api" }},
		{"zero timeout", func(c *MainConfig) { c.API.Timeout = 0 }},
		{"empty db path", func(c *MainConfig) { c.Session.DBPath = "" }},
		{"zero ttl", func(c *MainConfig) { c.Session.TTL = 0 }},
		{"bad log level", func(c *MainConfig) { c.Log.Level = "chatty" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
