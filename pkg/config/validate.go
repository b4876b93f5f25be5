package config

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// minSecretLength guards against trivially guessable signing secrets.
const minSecretLength = 16

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	if c.Auth.SigningSecret == "" && c.Auth.SigningSecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.signing_secret or auth.signing_secret_file is required"))
	} else if c.Auth.SigningSecretFile == "" && len(c.Auth.SigningSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("auth.signing_secret must be at least %d bytes", minSecretLength))
	}

	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost) {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}
