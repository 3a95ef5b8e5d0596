package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if c.WebSocket.MaxMessageSize != 1<<20 {
		t.Errorf("MaxMessageSize = %d, want %d", c.WebSocket.MaxMessageSize, 1<<20)
	}
	if c.Connections.MaxPerIP != 4 {
		t.Errorf("MaxPerIP = %d, want 4", c.Connections.MaxPerIP)
	}
	if c.Limits.MaxGridCells != 65536 {
		t.Errorf("MaxGridCells = %d, want 65536", c.Limits.MaxGridCells)
	}
	if c.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q, want sqlite", c.Store.Driver)
	}
	if c.Auth.TokenHash != "" {
		t.Error("auth should be disabled by default")
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	c, err := LoadConfig("does/not/exist.yaml")
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}
	if c.Connections.MaxTotal != 64 {
		t.Errorf("MaxTotal = %d, want default 64", c.Connections.MaxTotal)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")

	content := `websocket:
  allowed_origins:
    - "https://tools.example.com"
  max_message_size: 2048
connections:
  max_per_ip: 2
  max_total: 10
limits:
  max_grid_cells: 1024
store:
  driver: postgres
  postgres_dsn: "host=localhost dbname=gridkit sslmode=disable"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(c.WebSocket.AllowedOrigins) != 1 || c.WebSocket.AllowedOrigins[0] != "https://tools.example.com" {
		t.Errorf("AllowedOrigins = %v", c.WebSocket.AllowedOrigins)
	}
	if c.WebSocket.MaxMessageSize != 2048 {
		t.Errorf("MaxMessageSize = %d, want 2048", c.WebSocket.MaxMessageSize)
	}
	if c.Connections.MaxPerIP != 2 || c.Connections.MaxTotal != 10 {
		t.Errorf("Connections = %+v", c.Connections)
	}
	if c.Limits.MaxGridCells != 1024 {
		t.Errorf("MaxGridCells = %d, want 1024", c.Limits.MaxGridCells)
	}
	if c.Store.Driver != "postgres" {
		t.Errorf("Store.Driver = %q, want postgres", c.Store.Driver)
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	c := &WebSocketConfig{}

	if !c.IsOriginAllowed("http://localhost:8080", "localhost:8080") {
		t.Error("same-origin request should be allowed")
	}
	if c.IsOriginAllowed("http://evil.example.com", "localhost:8080") {
		t.Error("cross-origin request should be rejected")
	}
	if !c.IsOriginAllowed("", "localhost:8080") {
		t.Error("missing origin (non-browser client) should be allowed")
	}
}

func TestIsOriginAllowed_Wildcard(t *testing.T) {
	c := &WebSocketConfig{AllowedOrigins: []string{"*"}}

	if !c.IsOriginAllowed("http://anywhere.example.com", "localhost:8080") {
		t.Error("wildcard should allow any origin")
	}
}

func TestIsOriginAllowed_ExactMatch(t *testing.T) {
	c := &WebSocketConfig{AllowedOrigins: []string{"https://tools.example.com"}}

	if !c.IsOriginAllowed("https://tools.example.com", "localhost:8080") {
		t.Error("listed origin should be allowed")
	}
	if c.IsOriginAllowed("https://other.example.com", "localhost:8080") {
		t.Error("unlisted origin should be rejected")
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"http://localhost:8080", "localhost:8080", true},
		{"https://example.com/", "example.com", true},
		{"http://other.com", "example.com", false},
		{"", "example.com", true},
	}
	for _, tt := range tests {
		if got := isSameOrigin(tt.origin, tt.host); got != tt.want {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
		}
	}
}
