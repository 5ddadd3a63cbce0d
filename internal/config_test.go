package internal

import (
	"log/slog"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.App.HTTP.Host != "127.0.0.1" {
		t.Errorf("host = %q, want loopback", cfg.App.HTTP.Host)
	}
	if cfg.Vault.Extension != ".mschema" {
		t.Errorf("extension = %q, want .mschema", cfg.Vault.Extension)
	}
	if cfg.Data.Dir != "" {
		t.Errorf("data dir = %q, want empty (platform default)", cfg.Data.Dir)
	}
}

func TestConfig_LogLevelFromYAML(t *testing.T) {
	cases := []struct {
		text string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range cases {
		var cfg Config
		data := "app:\n  log_level: " + tc.text + "\n"
		if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
			t.Fatalf("unmarshal %q: %v", tc.text, err)
		}
		if cfg.App.LogLevel != tc.want {
			t.Errorf("log_level %q = %v, want %v", tc.text, cfg.App.LogLevel, tc.want)
		}
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Host: "127.0.0.1", Port: 9180}
	if got := cfg.Address(); got != "127.0.0.1:9180" {
		t.Errorf("Address() = %q", got)
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	cases := []struct {
		port int
		ok   bool
	}{
		{0, false},
		{1, true},
		{8080, true},
		{65535, true},
		{65536, false},
		{-1, false},
	}
	for _, tc := range cases {
		cfg := HTTPConfig{Host: "127.0.0.1", Port: tc.port}
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("port %d should pass: %v", tc.port, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("port %d should fail", tc.port)
		}
	}
}

func TestHTTPConfig_HostRequired(t *testing.T) {
	cfg := HTTPConfig{Host: "", Port: 8080}
	if err := cfg.Validate(); err == nil {
		t.Error("empty host should fail validation")
	}
}

func TestVaultConfig_Extension(t *testing.T) {
	cases := []struct {
		ext string
		ok  bool
	}{
		{".mschema", true},
		{".md", true},
		{"mschema", false},
		{".", false},
		{".tar.gz", false},
		{"./escape", false},
		{"", false},
	}
	for _, tc := range cases {
		cfg := VaultConfig{Extension: tc.ext}
		err := cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("extension %q should pass: %v", tc.ext, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("extension %q should fail", tc.ext)
		}
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestFullConfig_VaultValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.Extension = "broken"
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch extension error")
	}
}
