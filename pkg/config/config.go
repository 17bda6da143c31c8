// Package config provides unified configuration for the anfrage client.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (ANFRAGE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the anfrage client.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
}

// LogConfig holds logging settings. Both fields can be overridden by the
// ANFRAGE_DEBUG and ANFRAGE_LOG_LEVEL environment variables.
type LogConfig struct {
	Debug string `yaml:"debug"` // comma-separated debug categories
	Level string `yaml:"level"` // ERROR, WARN, INFO, DEBUG, TRACE
}

// BackendConfig holds Responses backend settings.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"` // default: the Codex backend
	Model   string        `yaml:"model"`    // required
	Timeout time.Duration `yaml:"timeout"`  // default: 120s
}

// AuthConfig selects the credential source. At most one of the explicit
// sources should be set; when none is, the shared auth file is used.
type AuthConfig struct {
	APIKey           string `yaml:"api_key"`
	APIKeyFile       string `yaml:"api_key_file"` // _file variant for api_key
	RefreshToken     string `yaml:"refresh_token"`
	RefreshTokenFile string `yaml:"refresh_token_file"` // _file variant for refresh_token
	EnvKey           bool   `yaml:"env_key"`            // read the key from ANFRAGE_API_KEY
	AuthFile         string `yaml:"auth_file"`          // override the default auth file path
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: "https://chatgpt.com/backend-api/codex",
			Timeout: 120 * time.Second,
		},
	}
}
