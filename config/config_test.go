package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seabattle.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Addr() != "localhost:8080" {
		t.Errorf("Expected localhost:8080, got %s", cfg.Addr())
	}
	if cfg.Game.IdleRoomTimeout != 0 {
		t.Error("Idle room expiry should be disabled by default")
	}
	if cfg.Server.MaxMessageSize != 4096 || cfg.Server.SendBuffer != 256 {
		t.Errorf("Unexpected transport defaults %+v", cfg.Server)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9090
  allowed_origins:
    - https://play.example.com
logging:
  level: debug
  format: json
game:
  idle_room_timeout: 30m
  sweep_interval: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Expected 0.0.0.0:9090, got %s", cfg.Addr())
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://play.example.com" {
		t.Errorf("Unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("Unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Game.IdleRoomTimeout != 30*time.Minute || cfg.Game.SweepInterval != 30*time.Second {
		t.Errorf("Unexpected game config %+v", cfg.Game)
	}
	// untouched keys keep their defaults
	if cfg.Server.SendBuffer != 256 {
		t.Errorf("Expected default send buffer, got %d", cfg.Server.SendBuffer)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"unknown key", "server:\n  prot: 80\n", false},
		{"bad yaml", "server: [", false},
		{"bad duration", "game:\n  idle_room_timeout: soon\n", false},
		{"port out of range", "server:\n  port: 70000\n", true},
		{"bad log format", "logging:\n  format: xml\n", true},
		{"sweep disabled with expiry", "game:\n  idle_room_timeout: 1m\n  sweep_interval: 0s\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.invalid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Errorf("Expected read error, got %v", err)
	}
}
