package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets all ANFRAGE_* variables that Load reads so tests do not
// leak into each other.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANFRAGE_CONFIG", "ANFRAGE_BASE_URL", "ANFRAGE_MODEL",
		"ANFRAGE_TIMEOUT", "ANFRAGE_REFRESH_TOKEN", "ANFRAGE_AUTH_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Backend.BaseURL != "https://chatgpt.com/backend-api/codex" {
		t.Errorf("unexpected default base URL %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 120*time.Second {
		t.Errorf("unexpected default timeout %s", cfg.Backend.Timeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
backend:
  model: gpt-5
  base_url: http://localhost:9000
  timeout: 30s
auth:
  refresh_token: rt-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Model != "gpt-5" {
		t.Errorf("expected model gpt-5, got %q", cfg.Backend.Model)
	}
	if cfg.Backend.BaseURL != "http://localhost:9000" {
		t.Errorf("expected overridden base URL, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.Backend.Timeout)
	}
	if cfg.Auth.RefreshToken != "rt-secret" {
		t.Errorf("expected refresh token from file, got %q", cfg.Auth.RefreshToken)
	}
}

func TestFileKeepsDefaultsForMissingFields(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
backend:
  model: gpt-5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.BaseURL != Defaults().Backend.BaseURL {
		t.Errorf("expected default base URL to survive, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 120*time.Second {
		t.Errorf("expected default timeout to survive, got %s", cfg.Backend.Timeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
backend:
  model: from-file
  base_url: http://file.example
`)
	t.Setenv("ANFRAGE_MODEL", "from-env")
	t.Setenv("ANFRAGE_BASE_URL", "http://env.example")
	t.Setenv("ANFRAGE_TIMEOUT", "45s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Model != "from-env" {
		t.Errorf("expected env model to win, got %q", cfg.Backend.Model)
	}
	if cfg.Backend.BaseURL != "http://env.example" {
		t.Errorf("expected env base URL to win, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 45*time.Second {
		t.Errorf("expected env timeout to win, got %s", cfg.Backend.Timeout)
	}
}

func TestConfigEnvDiscovery(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
backend:
  model: discovered
`)
	t.Setenv("ANFRAGE_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Model != "discovered" {
		t.Errorf("expected model from ANFRAGE_CONFIG file, got %q", cfg.Backend.Model)
	}
}

func TestFileReferenceResolution(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "api-key")
	if err := os.WriteFile(keyPath, []byte("sk-from-file\n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	path := writeConfigFile(t, `
backend:
  model: gpt-5
auth:
  api_key_file: `+keyPath+`
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.APIKey != "sk-from-file" {
		t.Errorf("expected trimmed secret from file, got %q", cfg.Auth.APIKey)
	}
}

func TestFileReferenceDoesNotOverrideValue(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "api-key")
	if err := os.WriteFile(keyPath, []byte("sk-from-file"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	path := writeConfigFile(t, `
backend:
  model: gpt-5
auth:
  api_key: sk-inline
  api_key_file: `+keyPath+`
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.APIKey != "sk-inline" {
		t.Errorf("expected inline value to win over file, got %q", cfg.Auth.APIKey)
	}
}

func TestValidateMissingModel(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
backend:
  base_url: http://localhost:9000
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for missing model")
	}
	if !strings.Contains(err.Error(), "backend.model") {
		t.Errorf("expected field path in error, got %q", err.Error())
	}
}

func TestValidateMutuallyExclusiveSources(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
backend:
  model: gpt-5
auth:
  api_key: sk-x
  refresh_token: rt-y
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for conflicting credential sources")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("expected exclusivity message, got %q", err.Error())
	}
}

func TestBadYAMLSurfacesPath(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `{broken yaml`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("expected file path in error, got %q", err.Error())
	}
}
