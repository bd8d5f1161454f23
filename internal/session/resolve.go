package session

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/matheus3301/evowpp/internal/config"
)

const DefaultSessionName = "main"

// ErrInvalidName is returned for names that cannot be used as a directory
// under the base dir.
var ErrInvalidName = errors.New("invalid session name")

var nameRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidateName reports whether name is a usable session name: up to 64
// lowercase letters, digits, '-' or '_', not starting with '-' or '_'.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("%w %q: use up to 64 of a-z 0-9 - _, starting with a letter or digit", ErrInvalidName, name)
	}
	return nil
}

// Resolve picks the session name: the flag, else default_session from the
// global config, else "main". The result is validated.
func Resolve(flagOverride string) (string, error) {
	name := flagOverride
	if name == "" {
		if cfg, err := config.Load(ConfigPath()); err == nil && cfg.DefaultSession != "" {
			name = cfg.DefaultSession
		}
	}
	if name == "" {
		name = DefaultSessionName
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
