// Package config resolves the service connection settings shared by the
// command-line tools.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aretw0/asfe/pkg/adapters/alchemiscale"
	"github.com/aretw0/asfe/pkg/adapters/file"
	"github.com/aretw0/asfe/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// Environment variables read when the matching flag is empty.
const (
	EnvUserID  = "ALCHEMISCALE_ID"
	EnvUserKey = "ALCHEMISCALE_KEY"
	EnvAPIURL  = "ALCHEMISCALE_URL"
)

// DefaultScopeKeyFile is where the network builder writes, and the other tools read, the network's scoped key.
const DefaultScopeKeyFile = "scoped-key.dat"

// ErrMissingCredentials is returned when the user id or key cannot be resolved.
var ErrMissingCredentials = errors.New("missing credentials")

// Flags carries the raw command-line values. Empty means unset.
type Flags struct {
	UserID  string
	UserKey string
	APIURL  string
	Timeout time.Duration
}

// Config is the resolved connection to the service.
type Config struct {
	APIURL      string `validate:"required,http_url"`
	Credentials alchemiscale.Credentials
	Timeout     time.Duration `validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Resolve merges flags with the process environment.
func Resolve(f Flags) (Config, error) {
	return ResolveWith(f, os.Getenv)
}

// ResolveWith merges flags with the given environment lookup.
// Flags win over the environment; the API URL falls back to the public endpoint.
func ResolveWith(f Flags, getenv func(string) string) (Config, error) {
	cfg := Config{
		APIURL: firstNonEmpty(f.APIURL, getenv(EnvAPIURL), alchemiscale.DefaultURL),
		Credentials: alchemiscale.Credentials{
			ID:  firstNonEmpty(f.UserID, getenv(EnvUserID)),
			Key: firstNonEmpty(f.UserKey, getenv(EnvUserKey)),
		},
		Timeout: f.Timeout,
	}

	var missing []string
	if cfg.Credentials.ID == "" {
		missing = append(missing, "user id (--user-id or "+EnvUserID+")")
	}
	if cfg.Credentials.Key == "" {
		missing = append(missing, "user key (--user-key or "+EnvUserKey+")")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Config{}, fmt.Errorf("invalid config: %s: failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ReadScopeKey reads a scoped key file. Surrounding whitespace is ignored.
func ReadScopeKey(path string) (domain.ScopedKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ScopedKey{}, fmt.Errorf("read scope key: %w", err)
	}
	sk, err := domain.ParseScopedKey(string(data))
	if err != nil {
		return domain.ScopedKey{}, fmt.Errorf("%s: %w", path, err)
	}
	return sk, nil
}

// WriteScopeKey writes a scoped key file with a trailing newline.
func WriteScopeKey(path string, sk domain.ScopedKey) error {
	return file.WriteAtomic(path, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, sk.String())
		return err
	})
}
