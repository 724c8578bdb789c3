// Package config provides configuration management for go-modconsole.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-while/go-modconsole/internal/logging"
	"gopkg.in/yaml.v3"
)

var AppVersion = "-unset-" // will be set at build time

const (
	DefaultWebPort         = 11980
	DefaultWebSSLPort      = 19443
	DefaultAPIBaseURL      = "http://127.0.0.1:8080/api"
	DefaultAPITimeout      = 15 * time.Second
	DefaultSessionDB       = "data/sessions.db"
	DefaultSessionTTL      = 7 * 24 * time.Hour
	DefaultCleanupInterval = 15 * time.Minute
	DefaultDashboardReload = 60 * time.Second
	DefaultPageSize        = 10
)

// MainConfig holds the main configuration for go-modconsole
type MainConfig struct {
	// Web interface settings
	Web WebConfig `json:"web" yaml:"web"`

	// Moderation backend settings
	API APIConfig `json:"api" yaml:"api"`

	// Session store settings
	Session SessionConfig `json:"session" yaml:"session"`

	Log LogConfig `json:"log" yaml:"log"`

	AppVersion string `json:"app_version" yaml:"-"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort      int      `json:"listen_port" yaml:"listen_port"`
	SSL             bool     `json:"ssl" yaml:"ssl"`
	CertFile        string   `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile         string   `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	StaticDir       string   `json:"static_dir" yaml:"static_dir"` // empty serves the embedded shell
	Debug           bool     `json:"debug" yaml:"debug"`           // Enable debug logging for sessions/auth
	PageSize        int      `json:"page_size" yaml:"page_size"`
	DashboardReload Duration `json:"dashboard_reload" yaml:"dashboard_reload"`
	TrustedProxies  []string `json:"trusted_proxies" yaml:"trusted_proxies"`
}

// APIConfig points the console at the moderation REST API
type APIConfig struct {
	BaseURL   string   `json:"base_url" yaml:"base_url"`
	Timeout   Duration `json:"timeout" yaml:"timeout"`
	UserAgent string   `json:"user_agent" yaml:"user_agent"`
}

// SessionConfig holds the server-side session store configuration
type SessionConfig struct {
	DBPath          string   `json:"db_path" yaml:"db_path"`
	Secret          string   `json:"secret" yaml:"secret"` // seals stored tokens; random per process when empty
	TTL             Duration `json:"ttl" yaml:"ttl"`
	CleanupInterval Duration `json:"cleanup_interval" yaml:"cleanup_interval"`
}

// LogConfig selects slog level and handler format
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// NewDefaultConfig returns a MainConfig with defaults applied
func NewDefaultConfig() *MainConfig {
	return &MainConfig{
		Web: WebConfig{
			ListenPort:      DefaultWebPort,
			PageSize:        DefaultPageSize,
			DashboardReload: Duration(DefaultDashboardReload),
			TrustedProxies:  []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
		},
		API: APIConfig{
			BaseURL:   DefaultAPIBaseURL,
			Timeout:   Duration(DefaultAPITimeout),
			UserAgent: "go-modconsole/" + AppVersion,
		},
		Session: SessionConfig{
			DBPath:          DefaultSessionDB,
			TTL:             Duration(DefaultSessionTTL),
			CleanupInterval: Duration(DefaultCleanupInterval),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		AppVersion: AppVersion,
	}
}

// LoadFile overlays a YAML or JSON file onto cfg. The format is picked by extension.
func (cfg *MainConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("config %s: unsupported extension (use .yaml, .yml or .json)", path)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the values that would otherwise fail late at runtime
func (cfg *MainConfig) Validate() error {
	if cfg.Web.ListenPort < 1024 || cfg.Web.ListenPort > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1024 and 65535)", cfg.Web.ListenPort)
	}
	if cfg.Web.SSL && (cfg.Web.CertFile == "" || cfg.Web.KeyFile == "") {
		return fmt.Errorf("ssl enabled but cert_file or key_file is empty")
	}
	if cfg.Web.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", cfg.Web.PageSize)
	}
	if cfg.Web.DashboardReload < 0 {
		return fmt.Errorf("dashboard_reload must not be negative")
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base_url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	if cfg.Session.DBPath == "" {
		return fmt.Errorf("session db_path is empty")
	}
	if cfg.Session.TTL <= 0 || cfg.Session.CleanupInterval <= 0 {
		return fmt.Errorf("session ttl and cleanup_interval must be positive")
	}
	return logging.Validate(cfg.Log.Level)
}
