package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 chars

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
security:
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
	if cfg.Hub.Timeout != 10 {
		t.Errorf("Hub.Timeout = %d, want default 10", cfg.Hub.Timeout)
	}
	if cfg.Voice.HouseholdID != 1 {
		t.Errorf("Voice.HouseholdID = %d, want default 1", cfg.Voice.HouseholdID)
	}
	if cfg.Voice.Manufacturer != "Dinodia Smart Living" {
		t.Errorf("Voice.Manufacturer = %q, want default", cfg.Voice.Manufacturer)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT should be disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfigFile(t, `
api:
  port: 9090
voice:
  household_id: 42
hub:
  timeout: 3
security:
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Voice.HouseholdID != 42 {
		t.Errorf("Voice.HouseholdID = %d, want 42", cfg.Voice.HouseholdID)
	}
	if cfg.Hub.Timeout != 3 {
		t.Errorf("Hub.Timeout = %d, want 3", cfg.Hub.Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DINODIA_VOICE_HOUSEHOLD_ID", "7")
	t.Setenv("DINODIA_JWT_SECRET", testSecret)

	path := writeConfigFile(t, "site:\n  id: test\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Voice.HouseholdID != 7 {
		t.Errorf("Voice.HouseholdID = %d, want env override 7", cfg.Voice.HouseholdID)
	}
	if cfg.Security.JWT.Secret != testSecret {
		t.Error("JWT secret env override not applied")
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing JWT secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: "security.jwt.secret is required",
		},
		{
			name:    "short JWT secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantErr: "at least 32 characters",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
		{
			name:    "zero hub timeout",
			mutate:  func(c *Config) { c.Hub.Timeout = 0 },
			wantErr: "hub.timeout",
		},
		{
			name:    "invalid voice household",
			mutate:  func(c *Config) { c.Voice.HouseholdID = 0 },
			wantErr: "voice.household_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.JWT.Secret = testSecret
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}
