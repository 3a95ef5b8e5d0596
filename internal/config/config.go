// Package config loads the gridkit service configuration from YAML.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds service-wide configuration settings.
type ServerConfig struct {
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	Auth        AuthConfig        `yaml:"auth"`
	Limits      LimitsConfig      `yaml:"limits"`
	Store       StoreConfig       `yaml:"store"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect. An
	// empty list enforces same-origin policy; "*" allows all origins
	// (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections from a single IP
	// address. 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections. 0 means
	// unlimited.
	MaxTotal int `yaml:"max_total"`
}

// AuthConfig holds access control settings for the query service.
type AuthConfig struct {
	// TokenHash is the bcrypt hash of the shared access token. Empty
	// disables authentication.
	TokenHash string `yaml:"token_hash"`
}

// LimitsConfig bounds the work a single request may ask for.
type LimitsConfig struct {
	// MaxGridCells caps width*height for both path and generation
	// requests.
	MaxGridCells int `yaml:"max_grid_cells"`

	// MaxGenerateRetries caps solver retries per generation request.
	MaxGenerateRetries int `yaml:"max_generate_retries"`
}

// StoreConfig selects where generated maps are persisted.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// SQLitePath is the database file path for the sqlite driver.
	SQLitePath string `yaml:"sqlite_path"`

	// PostgresDSN is the connection string for the postgres driver.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// DefaultConfig returns a ServerConfig with secure defaults.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		WebSocket: WebSocketConfig{
			AllowedOrigins: []string{},
			MaxMessageSize: 1 << 20, // generous: cost grids arrive as JSON
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 4,
			MaxTotal: 64,
		},
		Limits: LimitsConfig{
			MaxGridCells:       65536, // 256x256
			MaxGenerateRetries: 50,
		},
		Store: StoreConfig{
			Driver:     "sqlite",
			SQLitePath: "data/gridkit.db",
		},
	}
}

// LoadConfig loads service configuration from a YAML file. If the file
// doesn't exist the defaults are returned.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// IsOriginAllowed checks if the given origin is allowed based on the
// config. Returns true if AllowedOrigins contains "*", contains the
// exact origin, or is empty and the origin matches the request host.
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // no origin header means a non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
