package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.Model == "" {
		errs = append(errs, fmt.Errorf("backend.model is required"))
	}

	if c.Backend.BaseURL == "" {
		errs = append(errs, fmt.Errorf("backend.base_url must not be empty"))
	}

	if c.Backend.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("backend.timeout must be > 0, got %s", c.Backend.Timeout))
	}

	// Explicit credential sources are mutually exclusive; the manager
	// would silently pick one by precedence otherwise.
	sources := 0
	if c.Auth.APIKey != "" || c.Auth.APIKeyFile != "" {
		sources++
	}
	if c.Auth.RefreshToken != "" || c.Auth.RefreshTokenFile != "" {
		sources++
	}
	if c.Auth.EnvKey {
		sources++
	}
	if sources > 1 {
		errs = append(errs, fmt.Errorf("auth: api_key, refresh_token, and env_key are mutually exclusive"))
	}

	return errors.Join(errs...)
}
