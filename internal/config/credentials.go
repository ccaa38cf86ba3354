package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned when no DSN is configured and the
// credential environment variables are incomplete.
var ErrMissingCredentials = errors.New("warehouse credentials are not set")

// LoadCredentials loads the env file into the process environment.
// Variables already set are not overridden. A missing file is ignored.
func LoadCredentials(envFile string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %q: %w", envFile, err)
	}
	return nil
}

// ResolveDSN returns the configured DSN, or composes a postgres DSN from the
// credential environment variables.
func (w WarehouseConfig) ResolveDSN() (string, error) {
	if w.DSN != "" {
		return w.DSN, nil
	}
	if w.Driver != DriverPostgres {
		return "", fmt.Errorf("%w: warehouse.dsn is required for driver %q", ErrMissingCredentials, w.Driver)
	}

	user := os.Getenv(w.UserEnv)
	password := os.Getenv(w.PasswordEnv)
	host := os.Getenv(w.HostEnv)
	database := os.Getenv(w.DatabaseEnv)

	var missing []string
	if user == "" {
		missing = append(missing, w.UserEnv)
	}
	if password == "" {
		missing = append(missing, w.PasswordEnv)
	}
	if host == "" {
		missing = append(missing, w.HostEnv)
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   host,
		Path:   "/" + database,
	}
	if w.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": []string{w.SSLMode}}.Encode()
	}
	return dsn.String(), nil
}
