// Package credentials loads the GHCR username/token pair from a local
// KEY=VALUE file and exports it into the process environment.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	UsernameKey = "GITHUB_USERNAME"
	TokenKey    = "GITHUB_TOKEN"

	// DefaultFile is looked up in the working directory when no file is given.
	DefaultFile = ".env"
	// XDGFile is looked up under the XDG config dirs as the last resort.
	XDGFile = "imgpub/credentials.env"
)

// Credentials is the registry login pair. The token never leaves the process.
type Credentials struct {
	Username string
	Token    string
}

// String masks the token so Credentials can be logged safely.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:%s", c.Username, Mask(c.Token))
}

// Mask hides everything but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return "<none>"
	}
	if len(secret) <= 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// ConfigError is a fatal setup problem: missing file or missing keys.
type ConfigError struct {
	Message string
	Hint    string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ErrNoFile is wrapped when no credentials file could be located.
var ErrNoFile = errors.New("credentials file not found")

// Locate resolves which credentials file to read. An explicit path must
// exist; otherwise ./.env is tried, then $XDG_CONFIG_HOME/imgpub/credentials.env.
func Locate(explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		if st, err := os.Stat(p); err != nil || st.IsDir() {
			return "", &ConfigError{
				Message: fmt.Sprintf("credentials file %q not found", p),
				Hint:    "create it with " + UsernameKey + "=... and " + TokenKey + "=... lines",
				Err:     ErrNoFile,
			}
		}
		return p, nil
	}
	if st, err := os.Stat(DefaultFile); err == nil && !st.IsDir() {
		return DefaultFile, nil
	}
	if p, err := xdg.SearchConfigFile(XDGFile); err == nil {
		return p, nil
	}
	return "", &ConfigError{
		Message: "no credentials file found",
		Hint:    fmt.Sprintf("create %s (or %s under your config dir) or pass --env-file", DefaultFile, XDGFile),
		Err:     ErrNoFile,
	}
}

// Load reads path, exports every key into the environment (overriding
// existing values) and returns the required credentials.
func Load(path string) (Credentials, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return Credentials{}, &ConfigError{
			Message: fmt.Sprintf("cannot read credentials file %q", path),
			Hint:    "check the path and KEY=VALUE syntax",
			Err:     err,
		}
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := os.Setenv(k, vars[k]); err != nil {
			return Credentials{}, fmt.Errorf("export %s: %w", k, err)
		}
	}

	return FromEnv()
}

// FromEnv reads the required keys from the environment.
func FromEnv() (Credentials, error) {
	c := Credentials{
		Username: strings.TrimSpace(os.Getenv(UsernameKey)),
		Token:    strings.TrimSpace(os.Getenv(TokenKey)),
	}
	var missing []string
	if c.Username == "" {
		missing = append(missing, UsernameKey)
	}
	if c.Token == "" {
		missing = append(missing, TokenKey)
	}
	if len(missing) > 0 {
		return Credentials{}, &ConfigError{
			Message: "missing required credentials: " + strings.Join(missing, ", "),
			Hint:    "set them in the credentials file; the token needs write:packages scope",
		}
	}
	return c, nil
}
